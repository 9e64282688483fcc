// Package mimecast provides a Go client SDK for the Mimecast API 2.0,
// covering email gateway, domain, directory, archive, and threat
// protection endpoints.
//
// Every request goes through a quota-aware orchestrator that tracks the
// per-endpoint rate-limit headers returned by the API, waits out exhausted
// quota windows before sending, and retries throttled or transient
// failures with exponential backoff.
//
// Basic usage:
//
//	client, err := mimecast.New(ctx, "client-id", "client-secret",
//	    mimecast.WithRegion(mimecast.RegionEU))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.SendEmail(ctx, &mimecast.Message{
//	    To:       []mimecast.Address{{Email: "user@example.com"}},
//	    Subject:  "Hello",
//	    TextBody: "Hello from the SDK",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Credentials can also come from a secrets store; see [NewFromStore] and
// the secrets package.
package mimecast
