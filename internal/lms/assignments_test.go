package lms

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignmentsCourseAssignmentsUnwrapsEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses":[{"id":3,"assignments":[{"id":11,"course":3,"name":"Essay","duedate":1700000000}]}],"warnings":[]}`))
	})

	assignments, err := NewAssignments(client).CourseAssignments(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, uint(11), assignments[0].ID)
	require.Equal(t, "Essay", assignments[0].Name)
}

func TestAssignmentsCourseAssignmentsEmptyEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses":[],"warnings":[]}`))
	})

	assignments, err := NewAssignments(client).CourseAssignments(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestAssignmentsUserSubmissionMissingIsNull(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lastattempt":{}}`))
	})

	submission, err := NewAssignments(client).UserSubmission(context.Background(), 11, 7)
	require.NoError(t, err)
	require.Equal(t, "null", string(submission))
}

func TestAssignmentsSubmitOnlineTextEncodesPluginData(t *testing.T) {
	var form url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`null`))
	})

	_, err := NewAssignments(client).SubmitOnlineText(context.Background(), 11, "my essay")
	require.NoError(t, err)
	require.Equal(t, "mod_assign_save_submission", form.Get("wsfunction"))
	require.Equal(t, "11", form.Get("assignmentid"))
	require.Equal(t, "my essay", form.Get("plugindata[onlinetext_editor][text]"))
	require.Equal(t, "1", form.Get("plugindata[onlinetext_editor][format]"))
}
