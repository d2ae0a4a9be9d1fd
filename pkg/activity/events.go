package activity

import (
	"strings"
	"time"
)

const (
	// VerbCheckpoint is emitted after every baseline in a map is reset.
	VerbCheckpoint = "props.checkpoint"
	// VerbForcedDirty is emitted when an entry is marked dirty explicitly.
	VerbForcedDirty = "props.dirty.forced"
	// VerbFlushed is emitted after a flush pass wrote at least one entry.
	VerbFlushed = "props.flushed"

	ObjectTypeMap   = "props.map"
	ObjectTypeEntry = "props.entry"
)

// TrackerEventInput describes the fields shared by tracker lifecycle events.
type TrackerEventInput struct {
	ActorID      string
	UserID       string
	TenantID     string
	Channel      string
	Key          string
	CheckpointID string
	Entries      int
	Flushed      int
	Failed       int
	Metadata     map[string]any
	OccurredAt   time.Time
}

// BuildCheckpointEvent describes a completed Clean. The checkpoint id is the
// object id.
func BuildCheckpointEvent(input TrackerEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["entries"] = input.Entries
	return buildTrackerEvent(VerbCheckpoint, ObjectTypeMap, input.CheckpointID, metadata, input)
}

// BuildForcedDirtyEvent describes a SetDirty call for input.Key.
func BuildForcedDirtyEvent(input TrackerEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.CheckpointID != "" {
		metadata = ensureMetadata(metadata)
		metadata["checkpoint_id"] = input.CheckpointID
	}
	return buildTrackerEvent(VerbForcedDirty, ObjectTypeEntry, input.Key, metadata, input)
}

// BuildFlushedEvent describes the outcome of a flush pass.
func BuildFlushedEvent(input TrackerEventInput) Event {
	metadata := ensureMetadata(cloneMap(input.Metadata))
	metadata["flushed"] = input.Flushed
	metadata["failed"] = input.Failed
	objectID := input.CheckpointID
	if strings.TrimSpace(objectID) == "" {
		objectID = ObjectTypeMap
	}
	return buildTrackerEvent(VerbFlushed, ObjectTypeMap, objectID, metadata, input)
}

func buildTrackerEvent(verb, objectType, objectID string, metadata map[string]any, input TrackerEventInput) Event {
	return NormalizeEvent(Event{
		Verb:       verb,
		ActorID:    input.ActorID,
		UserID:     input.UserID,
		TenantID:   input.TenantID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    input.Channel,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	})
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
