/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// blendTag marks blended batch codes.
const blendTag = "MZ"

// RoastBatchCode builds "<PREFIX>-<DDMMYY>-<NNNN>" from the origin name.
func RoastBatchCode(originName string, roastDate Date, suffix int) string {
	return fmt.Sprintf("%s-%s-%04d", codePrefix(originName), roastDate.Compact(), suffix)
}

// BlendBatchCode builds "<PREFIX>-MZ-<DDMMYY>-<NNNN>" from the recipe or blend name.
func BlendBatchCode(name string, creationDate Date, suffix int) string {
	return fmt.Sprintf("%s-%s-%s-%04d", codePrefix(name), blendTag, creationDate.Compact(), suffix)
}

// codePrefix is the first two characters of name, upper-cased.
func codePrefix(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "XX"
	}
	end := 0
	for i := 0; i < 2 && end < len(name); i++ {
		_, size := utf8.DecodeRuneInString(name[end:])
		end += size
	}
	return strings.ToUpper(name[:end])
}
