package http

import (
	"github.com/neighbourlink-api/internal/infrastructure/dynamo"
	"github.com/neighbourlink-api/internal/infrastructure/google"
	jwtinfra "github.com/neighbourlink-api/internal/infrastructure/jwt"
	s3infra "github.com/neighbourlink-api/internal/infrastructure/s3"
	"github.com/neighbourlink-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	PostRepo         *dynamo.PostRepo
	SessionRepo      *dynamo.SessionRepo
	NotificationRepo *dynamo.NotificationRepo
	FileRepo         *dynamo.FileRepo
	CategoryRepo     *dynamo.CategoryRepo
	S3Store          *s3infra.Store
	PushSender       sns.PushSender
	GoogleVerifier   *google.Verifier
	JWTProvider      *jwtinfra.Provider
}
