// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       false, // settings are sent back, must round trip
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)

	stream.WriteObjectStart()
	stream.WriteObjectField("data")
	stream.WriteVal(message.Data)
	stream.WriteMore()
	stream.WriteObjectField("type")
	stream.WriteString(string(outboundType(message.Data)))
	stream.WriteObjectEnd()
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 1024)
		return &buf
	},
}

// decodeMessage reads the type before the data, wherever it is in the object.
func decodeMessage(ptr unsafe.Pointer, topLevelIter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)
	defer decodeMessagePool.Put(bufPtr)

	// Read bytes so can read twice
	messageBytes := topLevelIter.SkipAndAppendBytes((*bufPtr)[:0])
	*bufPtr = messageBytes[:0]
	if topLevelIter.Error != nil {
		return
	}

	pool := topLevelIter.Pool()
	iter := pool.BorrowIterator(messageBytes)
	defer pool.ReturnIterator(iter)

	var (
		name    string
		in      interface{}
		data    []byte
		typeErr error
	)

	iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
		switch field {
		case "type":
			name = i.ReadString()
			in, typeErr = newInbound(name)
		case "data":
			data = i.SkipAndReturnBytes()
		default:
			i.Skip()
		}
		return true
	})

	if iter.Error != nil {
		topLevelIter.Error = iter.Error
		return
	}
	if typeErr != nil {
		topLevelIter.Error = typeErr
		return
	}
	if in == nil {
		topLevelIter.Error = errors.New("no inbound message type")
		return
	}

	message := (*Message)(ptr)

	// data is valid JSON by now, so an error means it doesn't fit the type
	if data != nil {
		iter.ResetBytes(data)
		iter.ReadVal(in)
		if iter.Error != nil {
			message.Data = rejected{err: fmt.Errorf("invalid %s: %w", name, iter.Error)}
			return
		}
	}

	message.Data = reflect.Indirect(reflect.ValueOf(in)).Interface()
}
