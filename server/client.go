// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import "time"

type (
	// Client is an editor connected to the Hub.
	Client interface {
		// Init is called once by the hub goroutine when the client is registered.
		// client.Data().Hub will be set by the time this is called
		Init()

		// Close is called by (only) the hub goroutine when the client is unregistered.
		Close()

		// Send is how the hub sends a message to the client. Only called by the hub goroutine.
		Send(out outbound)

		// Destroy marks the client for destruction. It must call hub.unregister only once (no matter how many
		// times it is called; use a sync.Once if necessary). It may be called anywhere.
		Destroy()

		// Data allows the Client to be added to a double-linked list.
		Data() *ClientData
	}

	// ClientData is the data all clients must have.
	ClientData struct {
		Hub      *Hub
		Joined   time.Time
		Edits    int // Edits counts accepted layer changes
		Previous Client
		Next     Client
	}

	// ClientList is a doubly-linked list of Clients.
	// It can be iterated like this:
	// for client := list.First; client != nil; client = client.Data().Next {}
	ClientList struct {
		First Client
		Last  Client
		Len   int
	}
)

// Add appends a Client to the list.
func (list *ClientList) Add(client Client) {
	data := client.Data()
	if data.Previous != nil || data.Next != nil || list.First == client {
		panic("already added")
	}

	if list.Last == nil {
		list.First = client
	} else {
		list.Last.Data().Next = client
		data.Previous = list.Last
	}

	list.Last = client
	list.Len++
}

// Remove removes a Client from the list and returns the one after it.
func (list *ClientList) Remove(client Client) (next Client) {
	data := client.Data()

	switch {
	case data.Previous != nil:
		data.Previous.Data().Next = data.Next
	case list.First == client:
		list.First = data.Next
	default:
		panic("already removed")
	}

	if data.Next != nil {
		data.Next.Data().Previous = data.Previous
	} else {
		list.Last = data.Previous
	}

	list.Len--
	next = data.Next
	data.Next = nil
	data.Previous = nil

	return
}

// Broadcast sends out to every client in the list.
func (list *ClientList) Broadcast(out outbound) {
	for client := list.First; client != nil; client = client.Data().Next {
		send(client, out)
	}
}

// send sends out to client, taking a reference for shared outbounds.
func send(client Client, out outbound) {
	if shared, ok := out.(interface{ retain() }); ok {
		shared.retain()
	}
	client.Send(out)
}
