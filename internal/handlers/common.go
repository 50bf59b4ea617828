// common.go
//
// A document tree and form submission service for Keycloak-secured sites
// Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms
//
// This file is part of docuforms-api.
// docuforms-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docuforms-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docuforms-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Marta Kowalik <marta@docuforms.dev> (https://www.docuforms.dev), DocuForms"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam extracts a positive integer :id path parameter.
func parseIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// parseOptionalIDQuery extracts an optional positive integer query parameter.
// Returns nil when the parameter is absent, and !ok when it is present but
// not a positive integer.
func parseOptionalIDQuery(c *fiber.Ctx, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return nil, false
	}
	return &value, true
}
