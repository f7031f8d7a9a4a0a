// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements server.Cloud with AWS: presets in DynamoDB,
// snapshots in S3 and optionally a Route53 record for the server.
package cloud

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/SoftbearStudios/heightmap/server"
	"github.com/SoftbearStudios/heightmap/server/cloud/db"
	"github.com/SoftbearStudios/heightmap/server/cloud/dns"
	"github.com/SoftbearStudios/heightmap/server/cloud/fs"
	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
	jsoniter "github.com/json-iterator/go"
)

const (
	UpdatePeriod = 30 * time.Second

	snapshotFilename = "terrain.png"
	snapshotCache    = 60 // seconds
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Cloud struct {
	region   string
	ip       net.IP
	database db.Database
	dns      dns.DNS // nil without a hosted zone
	fs       fs.Filesystem
}

var _ server.Cloud = (*Cloud)(nil)

func (cloud *Cloud) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	builder.WriteString(cloud.region)
	if cloud.ip != nil {
		builder.WriteByte(' ')
		builder.WriteString(cloud.ip.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

// New connects to AWS using the EC2 user data. Returns an error when not
// running on a configured instance.
func New() (*Cloud, error) {
	userData, err := loadUserData()
	if err != nil {
		return nil, err
	}

	cloud := &Cloud{region: userData.Region}

	session, err := getAWSSession(cloud.region)
	if err != nil {
		return nil, err
	}

	cloud.database, err = db.NewDynamoDBDatabase(session, userData.Stage)
	if err != nil {
		return nil, err
	}
	cloud.fs, err = fs.NewS3Filesystem(session, userData.Stage)
	if err != nil {
		return nil, err
	}

	if userData.Route53ZoneID != "" {
		cloud.ip, err = getPublicIP()
		if err != nil {
			return nil, err
		}
		cloud.dns, err = dns.NewRoute53DNS(session, userData.Domain, userData.Route53ZoneID)
		if err != nil {
			return nil, err
		}
		if err = cloud.dns.UpdateRoute("edit-"+cloud.region, cloud.ip); err != nil {
			return nil, err
		}
	}

	return cloud, nil
}

func (cloud *Cloud) SavePreset(preset server.Preset) error {
	dbPreset, err := toDB(preset, time.Now())
	if err != nil {
		return err
	}
	return cloud.database.UpdatePreset(*dbPreset)
}

func (cloud *Cloud) ReadPreset(name string) (*server.Preset, error) {
	dbPreset, err := cloud.database.ReadPreset(name)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", server.ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return fromDB(dbPreset)
}

func (cloud *Cloud) ReadPresetNames() ([]string, error) {
	return cloud.database.ReadPresetNames()
}

func (cloud *Cloud) UploadTerrainSnapshot(data []byte) error {
	return cloud.fs.UploadStaticFile(snapshotFilename, snapshotCache, data)
}

func (cloud *Cloud) UpdatePeriod() time.Duration {
	return UpdatePeriod
}

func toDB(preset server.Preset, now time.Time) (*db.Preset, error) {
	layers, err := json.MarshalToString(preset.Layers)
	if err != nil {
		return nil, err
	}
	blend, err := preset.Blend.MarshalText()
	if err != nil {
		return nil, err
	}
	return &db.Preset{
		Name:    preset.Name,
		Layers:  layers,
		Blend:   string(blend),
		Updated: now.Unix(),
	}, nil
}

func fromDB(dbPreset *db.Preset) (*server.Preset, error) {
	preset := &server.Preset{Name: dbPreset.Name}

	if err := json.UnmarshalFromString(dbPreset.Layers, &preset.Layers); err != nil {
		return nil, fmt.Errorf("preset %q: %w", dbPreset.Name, err)
	}
	if preset.Layers == nil {
		preset.Layers = []terrain.Settings{}
	}

	blend := layer.BlendHalve
	if dbPreset.Blend != "" {
		if err := blend.UnmarshalText([]byte(dbPreset.Blend)); err != nil {
			return nil, fmt.Errorf("preset %q: %w", dbPreset.Name, err)
		}
	}
	preset.Blend = blend

	return preset, nil
}
