// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

type Preset struct {
	Name    string `dynamo:"name"`
	Layers  string `dynamo:"layers"` // JSON array of layer settings
	Blend   string `dynamo:"blend"`
	Updated int64  `dynamo:"updated"` // Unix seconds
}
