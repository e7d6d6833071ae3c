package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Emit(name string, payload any) error {
	args := m.Called(name, payload)
	return args.Error(0)
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0o644))
	return p
}

func TestNew_RequiresNotifier(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestIsPDFPath(t *testing.T) {
	tests := map[string]bool{
		"/a/b.pdf":     true,
		"/a/b.PDF":     true,
		"/a/b.Pdf":     true,
		"/a/b.txt":     false,
		"/a/b":         false,
		"/a/.pdf":      false,
		"/a/b.pdf.txt": false,
		"b.tar.pdf":    true,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsPDFPath(path), path)
	}
}

func TestDispatch_ExistingPDFForwardedOnce(t *testing.T) {
	dir := t.TempDir()
	pdf := writePDF(t, dir, "contract.pdf")

	n := &MockNotifier{}
	n.On("Emit", EventOpenPdf, OpenPdfEvent{Path: pdf}).Return(nil).Once()

	b, err := New(n)
	require.NoError(t, err)

	assert.True(t, b.Dispatch(pdf))
	n.AssertExpectations(t)
	n.AssertNumberOfCalls(t, "Emit", 1)
}

func TestDispatch_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	pdf := writePDF(t, dir, "SCAN.PDF")

	n := &MockNotifier{}
	n.On("Emit", EventOpenPdf, OpenPdfEvent{Path: pdf}).Return(nil)

	b, _ := New(n)
	assert.True(t, b.Dispatch(pdf))
	n.AssertExpectations(t)
}

func TestDispatch_DropsExistingNonPDF(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	n := &MockNotifier{}
	b, _ := New(n)

	assert.False(t, b.Dispatch(txt))
	n.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestDispatch_DropsMissingPDF(t *testing.T) {
	n := &MockNotifier{}
	b, _ := New(n)

	assert.False(t, b.Dispatch(filepath.Join(t.TempDir(), "gone.pdf")))
	n.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestDispatch_RelativePathBecomesAbsolute(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "rel.pdf")
	t.Chdir(dir)

	want, err := filepath.Abs("rel.pdf")
	require.NoError(t, err)

	n := &MockNotifier{}
	n.On("Emit", EventOpenPdf, OpenPdfEvent{Path: want}).Return(nil)

	b, _ := New(n)
	assert.True(t, b.Dispatch("rel.pdf"))
	n.AssertExpectations(t)
}

func TestDispatch_NotifyFailureIsSwallowed(t *testing.T) {
	pdf := writePDF(t, t.TempDir(), "a.pdf")

	n := &MockNotifier{}
	n.On("Emit", EventOpenPdf, mock.Anything).Return(errors.New("no listener attached")).Once()

	b, _ := New(n)
	assert.NotPanics(t, func() {
		assert.False(t, b.Dispatch(pdf))
	})
	// never retried
	n.AssertNumberOfCalls(t, "Emit", 1)
}

func TestDispatchAll(t *testing.T) {
	dir := t.TempDir()
	a := writePDF(t, dir, "a.pdf")
	b := writePDF(t, dir, "b.pdf")
	txt := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(txt, nil, 0o644))

	n := &MockNotifier{}
	n.On("Emit", EventOpenPdf, mock.Anything).Return(nil)

	br, _ := New(n)
	assert.Equal(t, 2, br.DispatchAll([]string{a, txt, filepath.Join(dir, "missing.pdf"), b}))

	require.Len(t, n.Calls, 2)
	assert.Equal(t, OpenPdfEvent{Path: a}, n.Calls[0].Arguments.Get(1))
	assert.Equal(t, OpenPdfEvent{Path: b}, n.Calls[1].Arguments.Get(1))
}
