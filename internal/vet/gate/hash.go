// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kusari-oss/apivet/internal/core/models"
)

// ContentHash computes the cache key for a plan: SHA-256 over the canonical
// JSON of the normalized endpoint set concatenated with the base URL.
// encoding/json serializes map keys in sorted order, so identical content
// always hashes identically regardless of input key order.
func ContentHash(endpoints []models.EndpointSpec, baseURL string) (string, error) {
	canonical, err := json.Marshal(endpoints)
	if err != nil {
		return "", fmt.Errorf("error serializing endpoints for hashing: %w", err)
	}

	sum := sha256.Sum256(append(canonical, []byte(baseURL)...))
	return hex.EncodeToString(sum[:]), nil
}
