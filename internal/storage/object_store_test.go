package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResumeKey(t *testing.T) {
	user := uuid.MustParse("a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11")
	upload := uuid.MustParse("b1ffcd88-8d1a-4ef8-bb6d-6bb9bd380a22")
	assert.Equal(t, "resumes/a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11/b1ffcd88-8d1a-4ef8-bb6d-6bb9bd380a22.pdf", ResumeKey(user, upload))
}

var _ ObjectStore = (*MinioStore)(nil)
