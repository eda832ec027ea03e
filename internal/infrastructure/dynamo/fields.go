package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldReaded           = "readed"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldFCMToken         = "fcm_token"

	// feedPartition is the constant partition key value shared by all posts
	// so the feed GSI can serve a created_at-ordered query.
	feedPartition = "post"
)
