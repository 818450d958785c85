package testing

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// PerformRequest Helper for performing requests in tests.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			panic("failed to marshal request body: " + err.Error())
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

// PerformFileUpload Helper for posting a multipart file in tests.
func PerformFileUpload(router *gin.Engine, path, fieldName, fileName string, content []byte) *httptest.ResponseRecorder {
	reqBody := &bytes.Buffer{}
	writer := multipart.NewWriter(reqBody)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		panic("failed to create form file: " + err.Error())
	}
	if _, err := part.Write(content); err != nil {
		panic("failed to write form file: " + err.Error())
	}
	if err := writer.Close(); err != nil {
		panic("failed to close multipart writer: " + err.Error())
	}

	req := httptest.NewRequest("POST", path, reqBody)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}
