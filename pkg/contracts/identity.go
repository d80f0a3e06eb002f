package contracts

import (
	"context"

	"github.com/montybasquiart/sihiri-build/pkg/clarity"
	"github.com/montybasquiart/sihiri-build/pkg/config"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Identity wraps the creator identity contract.
type Identity struct {
	a *Adapter
}

// Identity returns the identity contract wrapper.
func (a *Adapter) Identity() *Identity {
	return &Identity{a: a}
}

// SocialLink is one entry of a creator profile's link list.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ProfileInput is the argument set of register-profile.
type ProfileInput struct {
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Bio         string       `json:"bio"`
	AvatarURL   string       `json:"avatar_url"`
	Website     string       `json:"website"`
	SocialLinks []SocialLink `json:"social_links"`
	Categories  []string     `json:"categories"`
}

// GetProfile returns the stored profile of principal, or nil when none exists.
func (i *Identity) GetProfile(ctx context.Context, principal string) (Record, error) {
	arg, err := principalArg("principal", principal)
	if err != nil {
		return nil, err
	}
	v, err := i.a.read(ctx, config.ContractIdentity, "get-profile", arg)
	if err != nil {
		return nil, err
	}
	return asRecord(v)
}

func (i *Identity) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	v, err := i.a.read(ctx, config.ContractIdentity, "is-username-available", clarity.StringASCII(username))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// GetPrincipalByUsername returns "" when the username is unclaimed.
func (i *Identity) GetPrincipalByUsername(ctx context.Context, username string) (string, error) {
	v, err := i.a.read(ctx, config.ContractIdentity, "get-principal-by-username", clarity.StringASCII(username))
	if err != nil {
		return "", err
	}
	return asString(v)
}

func (i *Identity) IsVerified(ctx context.Context, principal string) (bool, error) {
	arg, err := principalArg("principal", principal)
	if err != nil {
		return false, err
	}
	v, err := i.a.read(ctx, config.ContractIdentity, "is-verified", arg)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// RegisterProfile submits register-profile for the signed-in user.
func (i *Identity) RegisterProfile(ctx context.Context, in ProfileInput) (*Result, error) {
	if in.Username == "" {
		return nil, errors.NewValidationError("username", "is required")
	}

	links := make(clarity.List, 0, len(in.SocialLinks))
	for _, link := range in.SocialLinks {
		links = append(links, clarity.Tuple{
			"platform": clarity.StringUTF8(link.Platform),
			"url":      clarity.StringUTF8(link.URL),
		})
	}
	categories := make(clarity.List, 0, len(in.Categories))
	for _, c := range in.Categories {
		categories = append(categories, clarity.StringUTF8(c))
	}

	args := []clarity.Value{
		clarity.StringUTF8(in.Username),
		clarity.StringUTF8(in.DisplayName),
		clarity.StringUTF8(in.Bio),
		clarity.StringUTF8(in.AvatarURL),
		clarity.StringUTF8(in.Website),
		links,
		categories,
	}
	return i.a.SubmitCall(ctx, config.ContractIdentity, "register-profile", args, nil)
}
