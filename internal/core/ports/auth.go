/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package ports

import "context"

// AuthRepository resolves hashed API keys to the viewer they were issued to.
type AuthRepository interface {
	ValidateKey(ctx context.Context, apiKeyHash string) (viewerID string, valid bool, err error)
}
