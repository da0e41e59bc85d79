package pkg

// Stabil hata kodları. Client'lar bu kodlara göre davranır,
// mevcut bir kodun anlamı ASLA değiştirilmez, sadece yenisi eklenir.
//
// Prefix'ler:
//   - AUN: kimlik doğrulama
//   - WSK: WebSocket action'ları (connect, react, post, disconnect)
//   - EMT: emote sorgulama / silme
//   - USR: profil
const (
	CodeBearerMissing      = "AUN-01"
	CodeKeySetUnavailable  = "AUN-02"
	CodeMalformedToken     = "AUN-03"
	CodeUnknownSigningKey  = "AUN-04"
	CodeIdentityMismatch   = "AUN-05"
	CodeSignatureInvalid   = "AUN-06"
	CodeConnectRateLimited = "AUN-07"
)

// Connect / disconnect
const (
	CodeConnectBadRequest     = "WSK-01"
	CodeConnectRegistryFailed = "WSK-02"
	CodeDisconnectBadRequest  = "WSK-91"
	CodeDisconnectFailed      = "WSK-92"
)

// React
const (
	CodeReactBadRequest       = "WSK-21"
	CodeReactConnNotFound     = "WSK-26"
	CodeReactRegistryFailed   = "WSK-27"
	CodeReactStateNotFound    = "WSK-28"
	CodeReactStoreReadFailed  = "WSK-29"
	CodeReactDuplicate        = "WSK-30"
	CodeReactNothingToDecr    = "WSK-31"
	CodeReactNotReactedYet    = "WSK-32"
	CodeReactStoreWriteFailed = "WSK-33"
	CodeReactEmojiNotFound    = "WSK-34"
	CodeReactConflict         = "WSK-35"
	CodeReactBroadcastFailed  = "WSK-36"
	CodeReactInvalidEmoji     = "WSK-37"
)

// Post emote
const (
	CodePostBadRequest      = "WSK-41"
	CodePostConnNotFound    = "WSK-42"
	CodePostRegistryFailed  = "WSK-43"
	CodePostProfileNotFound = "WSK-44"
	CodePostProfileFailed   = "WSK-45"
	CodePostUserMismatch    = "WSK-46"
	CodePostInsertFailed    = "WSK-47"
	CodePostReactionInit    = "WSK-48"
	CodePostScanFailed      = "WSK-49"
	CodePostBroadcastFailed = "WSK-50"
	CodePostRateLimited     = "WSK-51"
)

// Fetch / delete emote
const (
	CodeFetchBadRequest      = "EMT-11"
	CodeFetchInvalidLimit    = "EMT-12"
	CodeFetchConnNotFound    = "EMT-13"
	CodeFetchRegistryFailed  = "EMT-14"
	CodeFetchQueryFailed     = "EMT-15"
	CodeFetchProfileFailed   = "EMT-16"
	CodeFetchReactionFailed  = "EMT-17"
	CodeDeleteBadRequest     = "EMT-21"
	CodeDeleteConnNotFound   = "EMT-22"
	CodeDeleteRegistryFailed = "EMT-23"
	CodeDeleteNotFound       = "EMT-24"
	CodeDeleteNotAuthor      = "EMT-25"
	CodeDeleteStoreFailed    = "EMT-26"
	CodeDeleteBroadcast      = "EMT-27"
)

// Profile
const (
	CodeProfileInvalid  = "USR-01"
	CodeProfileNotFound = "USR-02"
	CodeProfileFailed   = "USR-03"
)
