package pipeline

import "github.com/voxloop/voxloop-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts RunOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.TranscriptUpdated:
			if opts.onTranscriptUpdate != nil {
				opts.onTranscriptUpdate(typedEvent.Transcript, true)
			}
		case events.WaitRequested:
			if opts.onWaitRequested != nil {
				opts.onWaitRequested()
			}
		case events.UtteranceSubmitted:
			if opts.onUtteranceSubmitted != nil {
				opts.onUtteranceSubmitted(Utterance{
					RequestID:   typedEvent.RequestID,
					Text:        typedEvent.Text,
					SubmittedAt: typedEvent.Timestamp(),
				})
			}
		case events.StateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(TurnState(typedEvent.From), TurnState(typedEvent.To))
			}
		case events.ReplySegment:
			if opts.onAssistantText != nil {
				opts.onAssistantText(typedEvent.Segment)
			}
		case events.SegmentPlayed:
			if opts.onSpokenSegment != nil {
				opts.onSpokenSegment(typedEvent.Text)
			}
		case events.PlaybackEnded:
			if opts.onPlaybackEnded != nil {
				opts.onPlaybackEnded(typedEvent.Transcript)
			}
		case events.TurnCancelled:
			if opts.onCancellation != nil {
				opts.onCancellation()
			}
		case events.Degraded:
			if opts.onDegraded != nil {
				opts.onDegraded(typedEvent.Reason)
			}
		}
	}
}
