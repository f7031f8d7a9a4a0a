// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dns points per-region editor hostnames at server addresses.
package dns

import (
	"errors"
	"net"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/route53"
)

// recordTTL is short so a replaced instance takes over quickly.
const recordTTL = 60 // seconds

type DNS interface {
	// UpdateRoute points name (a subdomain) at address.
	UpdateRoute(name string, address net.IP) error
}

type Route53DNS struct {
	svc    *route53.Route53
	domain string
	zoneID string
}

func NewRoute53DNS(session *session.Session, domain string, zoneID string) (*Route53DNS, error) {
	if domain == "" || zoneID == "" {
		return nil, errors.New("route53 needs a domain and hosted zone")
	}
	return &Route53DNS{
		svc:    route53.New(session),
		domain: domain,
		zoneID: zoneID,
	}, nil
}

func (route53DNS *Route53DNS) UpdateRoute(name string, address net.IP) error {
	change, err := upsert(name+"."+route53DNS.domain, address)
	if err != nil {
		return err
	}
	_, err = route53DNS.svc.ChangeResourceRecordSets(&route53.ChangeResourceRecordSetsInput{
		ChangeBatch:  &route53.ChangeBatch{Changes: []*route53.Change{change}},
		HostedZoneId: aws.String(route53DNS.zoneID),
	})
	return err
}

// upsert returns a change creating or replacing the A (or AAAA) record of fqdn.
func upsert(fqdn string, address net.IP) (*route53.Change, error) {
	recordType := "AAAA"
	if v4 := address.To4(); v4 != nil {
		recordType = "A"
		address = v4
	} else if address.To16() == nil {
		return nil, errors.New("invalid address")
	}

	return &route53.Change{
		Action: aws.String(route53.ChangeActionUpsert),
		ResourceRecordSet: &route53.ResourceRecordSet{
			Name:            aws.String(fqdn),
			Type:            aws.String(recordType),
			ResourceRecords: []*route53.ResourceRecord{{Value: aws.String(address.String())}},
			TTL:             aws.Int64(recordTTL),
		},
	}, nil
}
