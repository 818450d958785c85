package api

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/mr-atuzie/angt-votify-BE/api/controllers"
	"github.com/mr-atuzie/angt-votify-BE/api/transport"
	"github.com/mr-atuzie/angt-votify-BE/logging"
	"github.com/mr-atuzie/angt-votify-BE/notify"
	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)

	userStorage := &storage.DynamoUserStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameUsers,
		Timeout:   s.config.StorageConfig.Timeout,
	}
	electionStorage := &storage.DynamoElectionStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameElections,
		Timeout:   s.config.StorageConfig.Timeout,
	}
	ballotStorage := &storage.DynamoBallotStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameBallots,
		Timeout:   s.config.StorageConfig.Timeout,
	}
	optionStorage := &storage.DynamoVotingOptionStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameVotingOptions,
		Timeout:   s.config.StorageConfig.Timeout,
	}
	voterStorage := &storage.DynamoVoterStorage{
		Client:         dynamoClient,
		TableName:      s.config.TableNameVoters,
		GuardTableName: s.config.TableNameVoterGuards,
		Timeout:        s.config.StorageConfig.Timeout,
	}
	voteStorage := &storage.DynamoVoteStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameVotes,
		Timeout:   s.config.StorageConfig.Timeout,
	}

	notifier := &notify.CredentialNotifier{
		Email: &notify.SESEmailSender{
			Client:  sesv2.NewFromConfig(cfg),
			Sender:  s.config.SenderEmail,
			Timeout: s.config.NotifyConfig.Timeout,
		},
		SMS: &notify.SNSSMSSender{
			Client:  sns.NewFromConfig(cfg),
			Timeout: s.config.NotifyConfig.Timeout,
		},
	}

	auth := transport.AuthMiddleware(userStorage, s.config.JWTSecret)

	//Register controllers
	userController := controllers.NewUserController(userStorage, s.config.JWTSecret, s.config.TokenTTL)
	userController.RegisterRoutes(r, auth)
	electionController := controllers.NewElectionController(electionStorage, ballotStorage, optionStorage)
	electionController.RegisterRoutes(r, auth)
	ballotController := controllers.NewBallotController(ballotStorage, optionStorage, electionStorage)
	ballotController.RegisterRoutes(r, auth)
	optionController := controllers.NewVotingOptionController(optionStorage, ballotStorage)
	optionController.RegisterRoutes(r, auth)
	voterController := controllers.NewVoterController(voterStorage, voteStorage, electionStorage, ballotStorage, optionStorage, notifier)
	voterController.RegisterRoutes(r, auth)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// startLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// startLocal starts a normal HTTP server
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
