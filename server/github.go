package server

import (
	"context"
	"os"
	"strconv"

	"github.com/google/go-github/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"
)

// GithubProfile is the part of a GitHub account a login needs.
type GithubProfile struct {
	Id        int64
	Login     string
	Name      string
	AvatarUrl string
}

// Openid is the stable key users are stored under.
func (p GithubProfile) Openid() string {
	return strconv.FormatInt(p.Id, 10)
}

// GithubAuthenticator runs the OAuth code flow against GitHub.
type GithubAuthenticator interface {
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (*GithubProfile, error)
}

type OAuthGithubAuthenticator struct {
	config *oauth2.Config
}

func NewGithubAuthenticator(clientId, clientSecret, redirectUrl string) (*OAuthGithubAuthenticator, error) {
	if clientId == "" {
		return nil, errors.New("GITHUB_CLIENT_ID is not defined")
	}
	if clientSecret == "" {
		return nil, errors.New("GITHUB_CLIENT_SECRET is not defined")
	}
	return &OAuthGithubAuthenticator{
		config: &oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			RedirectURL:  redirectUrl,
			Endpoint:     githubOAuth.Endpoint,
			Scopes:       []string{"read:user"},
		},
	}, nil
}

// NewGithubAuthenticatorFromEnv reads GITHUB_CLIENT_ID, GITHUB_CLIENT_SECRET
// and GITHUB_REDIRECT_URL.
func NewGithubAuthenticatorFromEnv() (*OAuthGithubAuthenticator, error) {
	return NewGithubAuthenticator(
		os.Getenv("GITHUB_CLIENT_ID"),
		os.Getenv("GITHUB_CLIENT_SECRET"),
		os.Getenv("GITHUB_REDIRECT_URL"),
	)
}

func (a *OAuthGithubAuthenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Authenticate exchanges code for a token and fetches the user behind it.
func (a *OAuthGithubAuthenticator) Authenticate(ctx context.Context, code string) (*GithubProfile, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "fail to exchange github oauth code")
	}

	client := github.NewClient(a.config.Client(ctx, token))
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch github user")
	}
	return &GithubProfile{
		Id:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarUrl: user.GetAvatarURL(),
	}, nil
}
