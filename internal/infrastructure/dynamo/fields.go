package dynamo

// DynamoDB attribute names shared by the repos' partial update maps.
const (
	fieldEnable           = "enable"
	fieldIsPremium        = "is_premium"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"
	fieldUpdatedAt        = "updated_at"
)
