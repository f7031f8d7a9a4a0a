// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import "errors"

var ErrNotFound = errors.New("not found")

type Database interface {
	UpdatePreset(preset Preset) error
	// ReadPreset returns ErrNotFound if there is no preset with that name.
	ReadPreset(name string) (*Preset, error)
	ReadPresetNames() (names []string, err error)
}
