// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package azauth

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// credentialStrategy adapts an azcore.TokenCredential into a Strategy.
type credentialStrategy struct {
	name string
	cred azcore.TokenCredential
}

func (s *credentialStrategy) Name() string { return s.name }

func (s *credentialStrategy) Resolve(ctx context.Context) (Token, error) {
	accessToken, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{GraphScope},
	})
	if err != nil {
		return Token{}, Error.Wrap(err)
	}
	return Token{Value: accessToken.Token, ExpiresOn: accessToken.ExpiresOn}, nil
}

// NewClientSecretStrategy authenticates as a service principal with an
// explicit tenant/client/secret triple.
func NewClientSecretStrategy(tenantID, clientID, clientSecret string) (Strategy, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &credentialStrategy{name: "client-secret", cred: cred}, nil
}

// NewManagedIdentityStrategy authenticates with the platform-supplied
// managed identity, when the process runs on Azure infrastructure.
func NewManagedIdentityStrategy() (Strategy, error) {
	cred, err := azidentity.NewManagedIdentityCredential(nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &credentialStrategy{name: "managed-identity", cred: cred}, nil
}

// NewStaticStrategy returns Strategy that hands out a fixed bearer value
// which never expires. For development and tests only.
func NewStaticStrategy(value string) Strategy {
	return &staticStrategy{value: value}
}

type staticStrategy struct {
	value string
}

func (s *staticStrategy) Name() string { return "static" }

func (s *staticStrategy) Resolve(ctx context.Context) (Token, error) {
	return Token{Value: s.value, ExpiresOn: time.Now().Add(24 * time.Hour)}, nil
}

// NewCLIStrategy authenticates with the developer's Azure CLI session.
func NewCLIStrategy() (Strategy, error) {
	cred, err := azidentity.NewAzureCLICredential(nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &credentialStrategy{name: "azure-cli", cred: cred}, nil
}
