// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// AdminAccount is the single administrator credential record. The table
// holds exactly one row; the password is stored as a bcrypt hash and is
// updated in place by the change-password flow.
type AdminAccount struct {
	ID           int16     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	UpdatedAt    time.Time `json:"updated_at"`
}
