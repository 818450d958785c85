package notify

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/mr-atuzie/angt-votify-BE/logging"
)

type SNSSMSSender struct {
	Client  *sns.Client
	Timeout time.Duration
}

func (s *SNSSMSSender) Send(ctx context.Context, message, phoneNumber string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	_, err := s.Client.Publish(ctx, &sns.PublishInput{
		Message:     aws.String(message),
		PhoneNumber: aws.String(phoneNumber),
	})
	if err != nil {
		logging.Log.Errorf("NOTIFY: failed to send SMS to %s: %v", phoneNumber, err)
		return err
	}
	return nil
}
