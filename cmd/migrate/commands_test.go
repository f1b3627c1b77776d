package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error {
	return m.Called().Error(0)
}

func (m *mockMigrator) Down() error {
	return m.Called().Error(0)
}

func (m *mockMigrator) Steps(n int) error {
	return m.Called(n).Error(0)
}

func (m *mockMigrator) GoTo(v uint) error {
	return m.Called(v).Error(0)
}

func (m *mockMigrator) Force(v int) error {
	return m.Called(v).Error(0)
}

func (m *mockMigrator) Drop() error {
	return m.Called().Error(0)
}

func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func TestDatabaseCommands(t *testing.T) {
	log := zap.NewNop()

	m := &mockMigrator{}
	m.On("Up").Return(nil).Once()
	m.On("Down").Return(nil).Once()
	m.On("Steps", -1).Return(nil).Once()
	m.On("GoTo", uint(2)).Return(nil).Once()
	m.On("Force", 1).Return(nil).Once()
	m.On("Drop").Return(nil).Once()
	m.On("Version").Return(uint(2), false, nil).Once()

	require.NoError(t, databaseCommands["up"](log, m, nil))
	require.NoError(t, databaseCommands["down"](log, m, nil))
	require.NoError(t, databaseCommands["step"](log, m, []string{"-1"}))
	require.NoError(t, databaseCommands["goto"](log, m, []string{"2"}))
	require.NoError(t, databaseCommands["force"](log, m, []string{"1"}))
	require.NoError(t, databaseCommands["drop"](log, m, []string{"-confirm"}))
	require.NoError(t, databaseCommands["version"](log, m, nil))
	m.AssertExpectations(t)
}

func TestDatabaseCommands_BadArguments(t *testing.T) {
	log := zap.NewNop()
	m := &mockMigrator{}

	assert.ErrorIs(t, databaseCommands["step"](log, m, nil), errUsage)
	assert.Error(t, databaseCommands["step"](log, m, []string{"zero"}))
	assert.Error(t, databaseCommands["step"](log, m, []string{"0"}))
	assert.Error(t, databaseCommands["goto"](log, m, []string{"-3"}))
	assert.ErrorIs(t, databaseCommands["force"](log, m, nil), errUsage)
	assert.Error(t, databaseCommands["drop"](log, m, nil))

	m.AssertNotCalled(t, "Steps", mock.Anything)
	m.AssertNotCalled(t, "Drop")
}

func TestOfflineCommands_CreateAndList(t *testing.T) {
	dir := t.TempDir()
	log := zap.NewNop()

	require.NoError(t, offlineCommands["create"](log, dir, []string{"add_cafe_index", "Index reviews by cafe"}))
	require.NoError(t, offlineCommands["list"](log, dir, nil))

	matches, err := filepath.Glob(filepath.Join(dir, "*_add_cafe_index.up.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	body, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "Index reviews by cafe")

	assert.ErrorIs(t, offlineCommands["create"](log, dir, nil), errUsage)
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(zap.NewNop(), t.TempDir(), "sideways", nil)
	assert.ErrorIs(t, err, errUsage)
}
