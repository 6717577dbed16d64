package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state State
		text  string
		want  Event
	}{
		{name: "idle trigger hi", state: Idle, text: "hi", want: EventTrigger},
		{name: "idle trigger case and space", state: Idle, text: "  HeLLo  ", want: EventTrigger},
		{name: "idle trigger hey", state: Idle, text: "hey", want: EventTrigger},
		{name: "idle plain text", state: Idle, text: "what a day", want: EventText},
		{name: "idle trigger inside sentence is not a trigger", state: Idle, text: "hi there friend", want: EventText},
		{name: "awaiting entry stays text", state: AwaitingEntry, text: "hi", want: EventText},
		{name: "audio choice yes", state: AwaitingAudioChoice, text: "yes", want: EventAffirmative},
		{name: "audio choice uppercase yes", state: AwaitingAudioChoice, text: "YES", want: EventAffirmative},
		{name: "audio choice yep", state: AwaitingAudioChoice, text: "yep", want: EventAffirmative},
		{name: "audio choice long form", state: AwaitingAudioChoice, text: "yes, send audio", want: EventAffirmative},
		{name: "audio choice no", state: AwaitingAudioChoice, text: "no", want: EventNegative},
		{name: "audio choice anything else declines", state: AwaitingAudioChoice, text: "maybe tomorrow", want: EventNegative},
		{name: "awaiting bio stays text", state: AwaitingBio, text: "yes", want: EventText},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.state, tc.text))
		})
	}
}

func TestAcquireSerializesPerUser(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)

	sess, release, ok := m.Acquire(42)
	require.True(t, ok)
	require.NotNil(t, sess)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, Idle, sess.State)

	// Same user while held: busy.
	_, _, ok = m.Acquire(42)
	assert.False(t, ok)

	// Different user is unaffected.
	_, otherRelease, ok := m.Acquire(7)
	require.True(t, ok)
	otherRelease()

	release()

	// After release the user can be acquired again, state preserved.
	sess, release, ok = m.Acquire(42)
	require.True(t, ok)
	assert.Equal(t, int64(42), sess.UserID)
	release()
}

func TestSessionStatePersistsAcrossAcquires(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)

	sess, release, ok := m.Acquire(42)
	require.True(t, ok)
	sess.State = AwaitingEntry
	sess.PendingEntry = "draft"
	release()

	sess, release, ok = m.Acquire(42)
	require.True(t, ok)
	assert.Equal(t, AwaitingEntry, sess.State)
	assert.Equal(t, "draft", sess.PendingEntry)

	sess.Reset()
	assert.Equal(t, Idle, sess.State)
	assert.Empty(t, sess.PendingEntry)
	assert.Nil(t, sess.PendingAnalysis)
	assert.True(t, sess.PendingDate.IsZero())
	release()
}

func TestAcquireConcurrentUsers(t *testing.T) {
	t.Parallel()
	m := NewManager(nil)

	var wg sync.WaitGroup
	for id := int64(1); id <= 20; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			sess, release, ok := m.Acquire(userID)
			if !ok {
				t.Errorf("user %d unexpectedly busy", userID)
				return
			}
			sess.State = AwaitingEntry
			release()
		}(id)
	}
	wg.Wait()
}
