// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mirrorstash-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "mirrorstash.app"

	// ContextKeyUser is the key used to store user claims in the request context.
	ContextKeyUser = "user_claims"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # Database Schemas

const (
	SchemaMirror  = "mirror"
	SchemaOverlay = "overlay"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken  = "auth:reset_token:"
	RedisPrefixVerifyToken = "auth:verify_token:"
	RedisPrefixSession     = "auth:session:"

	// RedisPrefixSyncing is the distributed isSyncing gate key, one per instance.
	RedisPrefixSyncing = "sync:running:"

	// RedisPrefixSyncProgress is the pub/sub channel prefix carrying per-instance
	// sync progress events for the streaming admin handler.
	RedisPrefixSyncProgress = "sync:progress:"
)

// # Sync Tuning

const (
	// SyncEntityPageSize is the fixed page size used for paged entity fetch.
	SyncEntityPageSize = 500

	// SyncCleanupPageSize is the larger page size used for id-only cleanup scans.
	SyncCleanupPageSize = 5000

	// SyncJunctionDeleteBatchSize bounds how many parent ids a single junction
	// delete/reinsert statement covers within one batch transaction.
	SyncJunctionDeleteBatchSize = SyncEntityPageSize

	// SyncSoftDeleteBatchSize is the batch size for soft-deleting cleanup survivors.
	SyncSoftDeleteBatchSize = 500
)

// # Write Transaction Timeouts

const (
	// ExclusionSwapTimeout bounds the exclusion engine's atomic delete+insert+stats commit.
	ExclusionSwapTimeout = 30 * time.Second

	// ClearInstanceTimeout bounds the admin "clear all data for one instance" operation.
	ClearInstanceTimeout = 120 * time.Second

	// SingleEntityHideTimeout bounds addHiddenEntity's incremental cascade write.
	SingleEntityHideTimeout = 30 * time.Second

	// JunctionDeleteTimeout bounds one sync batch's junction delete/reinsert transaction.
	JunctionDeleteTimeout = 60 * time.Second

	// ProberRequestTimeout bounds a single preview-probe HTTP request (C8).
	ProberRequestTimeout = 5 * time.Second

	// SyncLockTTL bounds how long the distributed isSyncing Redis key lives
	// before a crashed process's lock auto-expires.
	SyncLockTTL = 2 * time.Hour
)
