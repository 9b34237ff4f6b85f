package webmail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fitpull/fitpull/internal/browser"
)

func TestWaitForLoginOnSignInPage(t *testing.T) {
	sess := &mockSession{}
	sess.On("Exists", mock.Anything, selLoginEmail).Return(true, nil)
	sess.On("WaitVisible", mock.Anything, selMain, 5*time.Minute).Return(nil)

	err := New(sess).WaitForLogin(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	sess.AssertExpectations(t)
}

func TestWaitForLoginAlreadySignedIn(t *testing.T) {
	sess := &mockSession{}
	sess.On("Exists", mock.Anything, selLoginEmail).Return(false, nil)
	// No sign-in form means the long operator timeout does not apply.
	sess.On("WaitVisible", mock.Anything, selMain, resultTimeout).Return(nil)

	err := New(sess).WaitForLogin(context.Background(), 5*time.Minute)
	require.NoError(t, err)
	sess.AssertExpectations(t)
}

func TestSearchCountsRows(t *testing.T) {
	sess := &mockSession{}
	query := `subject:"Your weekly progress report from Fitbit!" after:2024/06/01`
	sess.On("Click", mock.Anything, selSearchBox).Return(nil)
	sess.On("Fill", mock.Anything, selSearchBox, query).Return(nil)
	sess.On("Press", mock.Anything, selSearchBox, browser.KeyEnter).Return(nil)
	sess.On("WaitVisible", mock.Anything, selMain, resultTimeout).Return(nil)
	sess.On("Exists", mock.Anything, selNoResults).Return(false, nil)
	sess.On("Count", mock.Anything, selEmailRow).Return(3, nil)

	n, err := New(sess).Search(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	sess.AssertExpectations(t)
}

func TestSearchNoResultsBanner(t *testing.T) {
	sess := &mockSession{}
	sess.On("Click", mock.Anything, selSearchBox).Return(nil)
	sess.On("Fill", mock.Anything, selSearchBox, mock.Anything).Return(nil)
	sess.On("Press", mock.Anything, selSearchBox, browser.KeyEnter).Return(nil)
	sess.On("WaitVisible", mock.Anything, selMain, resultTimeout).Return(nil)
	sess.On("Exists", mock.Anything, selNoResults).Return(true, nil)
	sess.On("Text", mock.Anything, selNoResults).Return("No results found for your search", nil)

	n, err := New(sess).Search(context.Background(), "subject:anything")
	require.NoError(t, err)
	assert.Zero(t, n)
	sess.AssertNotCalled(t, "Count", mock.Anything, selEmailRow)
}

func TestOpenMessage(t *testing.T) {
	sess := &mockSession{}
	sess.On("ClickNth", mock.Anything, selEmailRow, 1).Return(nil)
	sess.On("WaitVisible", mock.Anything, selMain, resultTimeout).Return(nil)
	sess.On("Text", mock.Anything, selMain).Return("Your weekly stats", nil)

	body, err := New(sess).OpenMessage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Your weekly stats", body)
	sess.AssertExpectations(t)
}

func TestBack(t *testing.T) {
	sess := &mockSession{}
	sess.On("Click", mock.Anything, selBack).Return(nil)
	sess.On("WaitVisible", mock.Anything, selMain, resultTimeout).Return(nil)

	require.NoError(t, New(sess).Back(context.Background()))
	sess.AssertExpectations(t)
}
