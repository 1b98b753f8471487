/*
Package ports defines the driven ports (interfaces) of the onboard wizard.

These interfaces decouple the core logic from external implementations, allowing
the wizard to work with various storage backends, registration endpoints,
notification sinks and preview renderers.

# Key Interfaces

  - StateStore: Responsible for persisting and loading wizard State.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - Submitter: Sends the aggregated registration to the remote endpoint.
  - Notifier: Receives the success/failure notification of a submission.
  - PreviewProvider: Creates and revokes attachment preview handles.
*/
package ports
