// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"reflect"
	"strings"
)

type (
	// inbound is a message from a client, processed on the hub goroutine.
	inbound interface {
		Inbound(hub *Hub, client Client)
	}

	// outbound is a message to a client.
	outbound interface {
		// Pool is called once the outbound has been written (or dropped).
		Pool()
	}

	// Message is the envelope of every message: {"type": ..., "data": ...}.
	// Data is an inbound when decoded and an outbound when encoded.
	Message struct {
		Data interface{}
	}

	messageType string

	// messageTypes maps message type names to and from registered types.
	messageTypes struct {
		byName map[messageType]reflect.Type
		byType map[reflect.Type]messageType
	}

	SignedInbound struct {
		Client Client
		inbound
	}

	// UnknownMessageError means a client sent a type that isn't registered,
	// possibly because it is out of date.
	UnknownMessageError struct {
		Type string
	}
)

var (
	inbounds  = newMessageTypes()
	outbounds = newMessageTypes()
)

func newMessageTypes() messageTypes {
	return messageTypes{
		byName: make(map[messageType]reflect.Type),
		byType: make(map[reflect.Type]messageType),
	}
}

// register names each value's type after the type, uncapitalized.
func (types messageTypes) register(values ...interface{}) {
	for _, v := range values {
		typ := reflect.TypeOf(v)
		name := reflect.Indirect(reflect.ValueOf(v)).Type().Name()
		m := messageType(strings.ToLower(name[:1]) + name[1:])

		types.byName[m] = typ
		types.byType[typ] = m
	}
}

func registerInbound(values ...inbound) {
	for _, v := range values {
		inbounds.register(v)
	}
}

func registerOutbound(values ...outbound) {
	for _, v := range values {
		outbounds.register(v)
	}
}

// newInbound returns a pointer to a new inbound of the named type.
func newInbound(name string) (interface{}, error) {
	typ, ok := inbounds.byName[messageType(name)]
	if !ok {
		return nil, &UnknownMessageError{Type: name}
	}
	return reflect.New(typ).Interface(), nil
}

func outboundType(out interface{}) messageType {
	m, ok := outbounds.byType[reflect.TypeOf(out)]
	if !ok {
		// Panic because outbounds only come from trusted sources
		panic(fmt.Sprintf("invalid outbound message type %T", out))
	}
	return m
}

func (err *UnknownMessageError) Error() string {
	return fmt.Sprintf("unknown message type %q", err.Type)
}

// Overridden by jsoniter
func (message Message) MarshalJSON() ([]byte, error) {
	panic("unimplemented")
}

// Overridden by jsoniter
func (message *Message) UnmarshalJSON([]byte) error {
	panic("unimplemented")
}
