// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package mocks provides hand-maintained testify mocks for the auth
// repositories and primitives.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/authgate/authgate/internal/auth"
)

// MockUserRepository mocks auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock whose expectations are asserted at
// test cleanup.
func NewMockUserRepository(t *testing.T) *MockUserRepository {
	m := &MockUserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context, includeDisabled bool) ([]*auth.User, error) {
	args := m.Called(ctx, includeDisabled)
	if u := args.Get(0); u != nil {
		return u.([]*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id string, changes map[string]any) (bool, error) {
	args := m.Called(ctx, id, changes)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetDisabled(ctx context.Context, id string, disabled bool) (bool, error) {
	args := m.Called(ctx, id, disabled)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	args := m.Called(ctx, email, passwordHash)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository mocks auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock whose expectations are asserted at
// test cleanup.
func NewMockSessionRepository(t *testing.T) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Insert(ctx context.Context, id, userID, tokenHash string, lifetime time.Duration) (time.Time, error) {
	args := m.Called(ctx, id, userID, tokenHash, lifetime)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockSessionRepository) GetForVerify(ctx context.Context, id, userID string) (*auth.Session, error) {
	args := m.Called(ctx, id, userID)
	if s := args.Get(0); s != nil {
		return s.(*auth.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Refresh(ctx context.Context, id string, lifetime time.Duration) (time.Time, error) {
	args := m.Called(ctx, id, lifetime)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) ListActive(ctx context.Context) ([]auth.ActiveSession, error) {
	args := m.Called(ctx)
	if a := args.Get(0); a != nil {
		return a.([]auth.ActiveSession), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockResetTokenRepository mocks auth.ResetTokenRepository.
type MockResetTokenRepository struct {
	mock.Mock
}

// NewMockResetTokenRepository creates a mock whose expectations are asserted
// at test cleanup.
func NewMockResetTokenRepository(t *testing.T) *MockResetTokenRepository {
	m := &MockResetTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockResetTokenRepository) Supersede(ctx context.Context, id, email, tokenHash string, lifetime time.Duration) (*auth.ResetToken, error) {
	args := m.Called(ctx, id, email, tokenHash, lifetime)
	if r := args.Get(0); r != nil {
		return r.(*auth.ResetToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResetTokenRepository) GetLiveByEmail(ctx context.Context, email string) (*auth.ResetToken, error) {
	args := m.Called(ctx, email)
	if r := args.Get(0); r != nil {
		return r.(*auth.ResetToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResetTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSecretHasher mocks auth.SecretHasher.
type MockSecretHasher struct {
	mock.Mock
}

// NewMockSecretHasher creates a mock whose expectations are asserted at test
// cleanup.
func NewMockSecretHasher(t *testing.T) *MockSecretHasher {
	m := &MockSecretHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSecretHasher) Hash(secret string) (string, error) {
	args := m.Called(secret)
	return args.String(0), args.Error(1)
}

func (m *MockSecretHasher) Verify(candidate, hash string) bool {
	return m.Called(candidate, hash).Bool(0)
}

// MockTokenGenerator mocks auth.TokenGenerator.
type MockTokenGenerator struct {
	mock.Mock
}

// NewMockTokenGenerator creates a mock whose expectations are asserted at
// test cleanup.
func NewMockTokenGenerator(t *testing.T) *MockTokenGenerator {
	m := &MockTokenGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenGenerator) NewID() string {
	return m.Called().String(0)
}

func (m *MockTokenGenerator) NewSecretToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// MockMailer mocks auth.Mailer.
type MockMailer struct {
	mock.Mock
}

// NewMockMailer creates a mock whose expectations are asserted at test
// cleanup.
func NewMockMailer(t *testing.T) *MockMailer {
	m := &MockMailer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMailer) Send(ctx context.Context, to, template string, vars map[string]any) error {
	return m.Called(ctx, to, template, vars).Error(0)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository       = (*MockUserRepository)(nil)
	_ auth.SessionRepository    = (*MockSessionRepository)(nil)
	_ auth.ResetTokenRepository = (*MockResetTokenRepository)(nil)
	_ auth.SecretHasher         = (*MockSecretHasher)(nil)
	_ auth.TokenGenerator       = (*MockTokenGenerator)(nil)
	_ auth.Mailer               = (*MockMailer)(nil)
)
