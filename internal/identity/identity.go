package identity

// AuthorizedIdentity is one external identity that completed the OAuth
// authorization flow. It contains facts captured at authorization time;
// records are written once and never mutated in place.
type AuthorizedIdentity struct {
	IdentityID   string `json:"userID"`        // provider-scoped unique identifier, store primary key
	DisplayName  string `json:"username"`      // human-readable name at authorization time
	OriginIP     string `json:"userIP"`        // provenance of the authorizing request
	AvatarRef    string `json:"avatarURL"`     // derived presentational reference, may be empty
	AccessToken  string `json:"access_token"`  // opaque credential, replayed by the sync run
	RefreshToken string `json:"refresh_token"` // opaque credential, never used after ingestion
}

// AccessGrant is the transient result of one code exchange. It lives only
// for the duration of a single ingestion call and is never persisted.
type AccessGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// Profile holds the identity attributes resolved from an access grant.
type Profile struct {
	IdentityID  string
	DisplayName string
	AvatarRef   string
}
