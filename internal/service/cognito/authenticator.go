package cognito

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	cip "github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"

	"StorkPull/internal/domain/models"
	drepo "StorkPull/internal/domain/repository"
)

const (
	FlowSRP      = cip.AuthFlowTypeUserSrpAuth
	FlowPassword = cip.AuthFlowTypeUserPasswordAuth
)

// Option configures Authenticator.
type Option func(*Authenticator)

// WithFlow selects USER_SRP_AUTH (default) or USER_PASSWORD_AUTH.
func WithFlow(flow string) Option {
	return func(a *Authenticator) {
		if flow != "" {
			a.flow = flow
		}
	}
}

// WithAPI replaces the Cognito client.
func WithAPI(api cognitoidentityprovideriface.CognitoIdentityProviderAPI) Option {
	return func(a *Authenticator) {
		a.api = api
	}
}

// WithTimeout sets the HTTP timeout of the default Cognito client.
func WithTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		a.timeout = d
	}
}

// Authenticator logs one account into a Cognito user pool.
type Authenticator struct {
	account models.Account
	flow    string
	timeout time.Duration
	api     cognitoidentityprovideriface.CognitoIdentityProviderAPI
	now     func() time.Time
	random  io.Reader
}

var _ drepo.Authenticator = (*Authenticator)(nil)

// New creates an authenticator for acct.
func New(acct models.Account, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		account: acct,
		flow:    FlowSRP,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.api == nil {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(acct.Region),
			Credentials: credentials.AnonymousCredentials,
			HTTPClient:  &http.Client{Timeout: a.timeout},
		})
		if err != nil {
			return nil, fmt.Errorf("cognito session: %w", err)
		}
		a.api = cip.New(sess)
	}
	return a, nil
}

// Authenticate performs a full login with the configured flow.
func (a *Authenticator) Authenticate(ctx context.Context) (*models.TokenSet, error) {
	var (
		tokens *models.TokenSet
		err    error
	)
	switch a.flow {
	case FlowPassword:
		tokens, err = a.passwordAuth(ctx)
	default:
		tokens, err = a.srpAuth(ctx)
	}
	if err != nil {
		return nil, a.authError(err)
	}
	return tokens, nil
}

func (a *Authenticator) passwordAuth(ctx context.Context) (*models.TokenSet, error) {
	out, err := a.api.InitiateAuthWithContext(ctx, &cip.InitiateAuthInput{
		AuthFlow: aws.String(FlowPassword),
		ClientId: aws.String(a.account.ClientID),
		AuthParameters: map[string]*string{
			"USERNAME": aws.String(a.account.Username),
			"PASSWORD": aws.String(a.account.Password),
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, &challengeError{name: aws.StringValue(out.ChallengeName)}
	}
	return tokenSet(out.AuthenticationResult, ""), nil
}

func (a *Authenticator) srpAuth(ctx context.Context) (*models.TokenSet, error) {
	srp, err := newSRPClient(a.account.UserPoolID, a.random)
	if err != nil {
		return nil, err
	}

	initOut, err := a.api.InitiateAuthWithContext(ctx, &cip.InitiateAuthInput{
		AuthFlow: aws.String(FlowSRP),
		ClientId: aws.String(a.account.ClientID),
		AuthParameters: map[string]*string{
			"USERNAME": aws.String(a.account.Username),
			"SRP_A":    aws.String(srp.SRPA()),
		},
	})
	if err != nil {
		return nil, err
	}
	if name := aws.StringValue(initOut.ChallengeName); name != cip.ChallengeNameTypePasswordVerifier {
		return nil, &challengeError{name: name}
	}

	params := initOut.ChallengeParameters
	userID := aws.StringValue(params["USER_ID_FOR_SRP"])
	secretBlock := aws.StringValue(params["SECRET_BLOCK"])

	key, err := srp.passwordKey(userID, a.account.Password, aws.StringValue(params["SALT"]), aws.StringValue(params["SRP_B"]))
	if err != nil {
		return nil, err
	}
	ts := srpTimestamp(a.now())
	sig, err := srp.claimSignature(key, userID, secretBlock, ts)
	if err != nil {
		return nil, err
	}

	out, err := a.api.RespondToAuthChallengeWithContext(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName: aws.String(cip.ChallengeNameTypePasswordVerifier),
		ClientId:      aws.String(a.account.ClientID),
		Session:       initOut.Session,
		ChallengeResponses: map[string]*string{
			"USERNAME":                    aws.String(userID),
			"TIMESTAMP":                   aws.String(ts),
			"PASSWORD_CLAIM_SECRET_BLOCK": aws.String(secretBlock),
			"PASSWORD_CLAIM_SIGNATURE":    aws.String(sig),
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, &challengeError{name: aws.StringValue(out.ChallengeName)}
	}
	return tokenSet(out.AuthenticationResult, ""), nil
}

// Refresh exchanges refreshToken for new access and id tokens. The
// refresh token itself is carried over unless Cognito rotates it.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*models.TokenSet, error) {
	out, err := a.api.InitiateAuthWithContext(ctx, &cip.InitiateAuthInput{
		AuthFlow: aws.String(cip.AuthFlowTypeRefreshTokenAuth),
		ClientId: aws.String(a.account.ClientID),
		AuthParameters: map[string]*string{
			"REFRESH_TOKEN": aws.String(refreshToken),
		},
	})
	if err != nil {
		return nil, &models.RefreshError{Username: a.account.Username, Err: err}
	}
	if out.AuthenticationResult == nil {
		return nil, &models.RefreshError{
			Username: a.account.Username,
			Err:      &challengeError{name: aws.StringValue(out.ChallengeName)},
		}
	}
	return tokenSet(out.AuthenticationResult, refreshToken), nil
}

func tokenSet(r *cip.AuthenticationResultType, refreshToken string) *models.TokenSet {
	ts := &models.TokenSet{
		AccessToken:  aws.StringValue(r.AccessToken),
		IDToken:      aws.StringValue(r.IdToken),
		RefreshToken: aws.StringValue(r.RefreshToken),
		ExpiresIn:    time.Duration(aws.Int64Value(r.ExpiresIn)) * time.Second,
	}
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts
}

type challengeError struct {
	name string
}

func (e *challengeError) Error() string {
	if e.name == "" {
		return "no authentication result"
	}
	return fmt.Sprintf("unsupported challenge %s", e.name)
}

// authError classifies a login failure into the account-level taxonomy.
func (a *Authenticator) authError(err error) error {
	reset := false

	var ce *challengeError
	var ae awserr.Error
	switch {
	case errors.As(err, &ce):
		reset = ce.name == cip.ChallengeNameTypeNewPasswordRequired
	case errors.As(err, &ae):
		reset = ae.Code() == cip.ErrCodePasswordResetRequiredException
	}
	return &models.AuthError{Username: a.account.Username, Reset: reset, Err: err}
}
