// Package events defines the typed pipeline event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - capture.*
//   - reply.*
//   - synthesis.*
//   - playback.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Ended: lifecycle boundary indicating stream completion.
//
// capture events
//
//   - CaptureStarted (capture.started): a recording session opened.
//   - CaptureDenied (capture.denied): microphone permission was refused.
//   - CaptureFailed (capture.failed): the recognizer or device failed mid-session.
//   - CaptureStopped (capture.stopped): the recording session closed.
//   - TranscriptUpdated (capture.transcript_updated): mutable live transcript
//     snapshot for the active session.
//   - WaitRequested (capture.wait_requested): the "wait" trigger word extended
//     the completion timer without submitting.
//   - UtteranceSubmitted (capture.utterance_submitted): a finished utterance
//     left the capture controller.
//
// reply events
//
//   - ReplySegment (reply.segment): streamed assistant reply text segment.
//   - ReplyEnded (reply.ended): no more reply chunks are coming.
//
// synthesis events
//
//   - SegmentDispatched (synthesis.segment_dispatched): a sentence segment was
//     sent to the synthesis endpoint.
//   - SegmentSkipped (synthesis.segment_skipped): a segment resolved to skip
//     (timeout, network error, non-success response, or empty audio).
//
// playback events
//
//   - PlaybackStarted (playback.started): the first audio slot began playing.
//   - SegmentPlayed (playback.segment_played): an audio slot finished playing;
//     includes the spoken text for that slot.
//   - PlaybackEnded (playback.ended): the ordered sequence drained; includes
//     the transcript of everything actually spoken.
//   - PlaybackFailed (playback.failed): the output device refused audio; a
//     degraded event follows.
//
// turn_state events
//
//   - StateChanged (turn_state.changed): the turn controller moved between
//     states.
//   - TurnCancelled (turn_state.cancelled): a user-requested interrupt
//     discarded the current turn.
//   - Degraded (turn_state.degraded): an unrecoverable voice failure forced
//     text-only mode.
package events
