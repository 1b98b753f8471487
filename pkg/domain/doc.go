/*
Package domain contains the core domain models of the onboard intake wizard.

It defines the entities the wizard state machine works on: steps, the field catalogue,
answer values (including file attachments), the execution State and the submission
payload. This package is kept pure and free of I/O, following Hexagonal Architecture
principles; adapters and the runtime depend on it, never the other way around.

# Key Entities

  - StepID: Identifies one screen of the wizard (e.g. "email", "certification", "complete").
  - Field: A catalogue entry describing one answer (kind, owning step, choice options).
  - Answers: The Field Store. Every catalogue field is always present with a neutral default.
  - Attachment: A user-selected binary file with an optional revocable PreviewHandle.
  - State: Captures the runtime snapshot of one open wizard (Current Step, Answers, Error).
  - Submission: The aggregated, all-or-nothing payload sent to the registration endpoint.
*/
package domain
