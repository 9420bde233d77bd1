package cache

import "fmt"

// CompanyKey is where a resolved company is cached, keyed by API key digest.
func CompanyKey(keyDigest string) string {
	return fmt.Sprintf("auth:company:%s", keyDigest)
}
