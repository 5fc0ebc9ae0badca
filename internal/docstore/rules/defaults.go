package rules

import (
	"strconv"
	"strings"
)

const ownerOrAdmin = `auth != null && (auth.uid == ownerId || auth.role == "ADMIN")`

// DefaultRules protects every user tree under usersCollection so that only its owner or
// an ADMIN can reach it. New accounts must be funded with at least minDeposit.
func DefaultRules(usersCollection string, minDeposit float64) []Rule {
	users := strings.Trim(usersCollection, "/")
	return []Rule{
		{
			Match: users + "/{uid}",
			Allow: map[Operation]string{
				OpRead:   ownerOrAdmin,
				OpCreate: ownerOrAdmin,
				OpUpdate: ownerOrAdmin,
			},
		},
		{
			Match: users + "/{uid}/accounts",
			Allow: map[Operation]string{
				OpList: ownerOrAdmin,
			},
		},
		{
			Match: users + "/{uid}/accounts/{accountId}",
			Allow: map[Operation]string{
				OpRead:   ownerOrAdmin,
				OpUpdate: ownerOrAdmin,
				OpCreate: ownerOrAdmin + ` && has(request.balance) && request.balance >= ` + doubleLiteral(minDeposit),
			},
		},
	}
}

// doubleLiteral renders v so that CEL parses it as a double.
func doubleLiteral(v float64) string {
	lit := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(lit, ".") {
		lit += ".0"
	}
	return lit
}
