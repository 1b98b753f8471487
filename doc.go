/*
Package onboard runs the multi-step intake wizard that registers rope-access
technicians.

A wizard walks a fixed, declarative graph of steps (name, contact, password,
certification, license, address, banking and so on), validates each step
before it can be left forwards, and finally sends every answer and attached
document to a registration endpoint in a single multipart request.

# Architecture

The engine (internal/runtime) is a pure state machine: every operation takes a
domain.State and returns the next one. The Host (pkg/host) mounts wizards on
behalf of a container, persists states through a ports.StateStore and runs
submissions in the background, outside the session lock. Adapters plug in
stores (memory, file, Redis, PostgreSQL), notifiers (slog, NATS, SSE) and
front ends (HTTP API, terminal prompt).

# Usage

	svc, err := onboard.New(submit.New("https://api.example.com/technicians"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := svc.Open(ctx, "tech-42")
	state, _ = svc.Set(ctx, "tech-42", domain.FieldFirstName, domain.Text("Ada"))
	state, _ = svc.Continue(ctx, "tech-42")
	if state.Error != "" {
		// show it inline and stay on the step
	}

Opening a wizard always starts over; Close and RequestClose release every
image preview the wizard still holds.
*/
package onboard
