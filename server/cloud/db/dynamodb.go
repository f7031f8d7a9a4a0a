// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

type DynamoDBDatabase struct {
	svc          *dynamodb.DynamoDB
	db           *dynamo.DB
	presetsTable dynamo.Table
}

func NewDynamoDBDatabase(session *session.Session, stage string) (*DynamoDBDatabase, error) {
	ddb := &DynamoDBDatabase{svc: dynamodb.New(session)}
	ddb.db = dynamo.NewFromIface(ddb.svc)
	ddb.presetsTable = ddb.db.Table("heightmap-" + stage + "-presets")
	return ddb, nil
}

func (ddb *DynamoDBDatabase) UpdatePreset(preset Preset) error {
	return ddb.presetsTable.Put(preset).Run()
}

func (ddb *DynamoDBDatabase) ReadPreset(name string) (*Preset, error) {
	var preset Preset
	err := ddb.presetsTable.Get("name", name).One(&preset)
	if err == dynamo.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (ddb *DynamoDBDatabase) ReadPresetNames() (names []string, err error) {
	query := ddb.presetsTable.Scan().Project("name").Iter()

	for {
		var preset Preset
		ok := query.Next(&preset)
		if !ok {
			err = query.Err()
			return
		}
		names = append(names, preset.Name)
	}
}
