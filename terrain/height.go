// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

// Normalized heights at which the preview colour ramp changes.
const (
	OceanLevel = 0.45
	SandLevel  = OceanLevel + 0.04
	GrassLevel = SandLevel + 0.18
	RockLevel  = GrassLevel + 0.14
	SnowLevel  = 1.0
)
