package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used by AWSStore.
type SecretsManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(
		ctx context.Context,
		params *secretsmanager.CreateSecretInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(
		ctx context.Context,
		params *secretsmanager.PutSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.PutSecretValueOutput, error)
	DeleteSecret(
		ctx context.Context,
		params *secretsmanager.DeleteSecretInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.DeleteSecretOutput, error)
}

// AWSStore keeps each secret as a string secret named {prefix}{service}/{account}.
type AWSStore struct {
	client SecretsManagerAPI
	prefix string
}

// AWSOptions configures NewAWSStore. Empty fields use the SDK defaults.
type AWSOptions struct {
	Region   string
	Endpoint string
	Prefix   string
}

// NewAWSStore loads the default AWS configuration (environment, shared
// config, instance role) and returns a Secrets Manager backed store.
func NewAWSStore(ctx context.Context, opts AWSOptions) (*AWSStore, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewAWSStoreWithClient(client, opts.Prefix), nil
}

func NewAWSStoreWithClient(client SecretsManagerAPI, prefix string) *AWSStore {
	return &AWSStore{client: client, prefix: prefix}
}

func (s *AWSStore) secretID(service, account string) string {
	return s.prefix + strings.ToLower(service) + "/" + account
}

func isNotFound(err error) bool {
	var nf *types.ResourceNotFoundException
	return errors.As(err, &nf)
}

func (s *AWSStore) Get(ctx context.Context, service, account string) (string, error) {
	id := s.secretID(service, account)
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if isNotFound(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}
	return *out.SecretString, nil
}

func (s *AWSStore) Set(ctx context.Context, service, account, secret string) error {
	id := s.secretID(service, account)
	_, err := s.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(secret),
	})
	if isNotFound(err) {
		_, err = s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(id),
			SecretString: aws.String(secret),
		})
	}
	if err != nil {
		return fmt.Errorf("writing secret %s: %w", id, err)
	}
	return nil
}

func (s *AWSStore) Delete(ctx context.Context, service, account string) error {
	id := s.secretID(service, account)
	_, err := s.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(id),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting secret %s: %w", id, err)
	}
	return nil
}
