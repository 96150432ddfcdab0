package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"music-service/internal/models"
	"music-service/internal/rabbitmq"
	"music-service/internal/repositories"
)

// MockUserRepository mocks UserRepository behavior for handlers.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, nick, email, passwordHash string, isAdmin bool) (*models.User, error) {
	args := m.Called(ctx, nick, email, passwordHash, isAdmin)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) NickTaken(ctx context.Context, nick string, excludeID int64) (bool, error) {
	args := m.Called(ctx, nick, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	args := m.Called(ctx, id, isAdmin)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateNick(ctx context.Context, id int64, nick string) error {
	args := m.Called(ctx, id, nick)
	return args.Error(0)
}

func (m *MockUserRepository) GetProfileImagePath(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) SetProfileImagePath(ctx context.Context, id int64, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SearchByNickOrEmail(ctx context.Context, excludeID int64, query string) ([]models.PublicUser, error) {
	args := m.Called(ctx, excludeID, query)
	var users []models.PublicUser
	if val := args.Get(0); val != nil {
		users = val.([]models.PublicUser)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SearchByIDSubstring(ctx context.Context, excludeID int64, digits string) ([]models.PublicUser, error) {
	args := m.Called(ctx, excludeID, digits)
	var users []models.PublicUser
	if val := args.Get(0); val != nil {
		users = val.([]models.PublicUser)
	}
	return users, args.Error(1)
}

var _ repositories.UserRepository = (*MockUserRepository)(nil)

// MockFriendshipRepository mocks FriendshipRepository behavior for handlers.
type MockFriendshipRepository struct {
	mock.Mock
}

func (m *MockFriendshipRepository) CreateRequest(ctx context.Context, requesterID, addresseeID int64) (*models.Friendship, error) {
	args := m.Called(ctx, requesterID, addresseeID)
	var friendship *models.Friendship
	if val := args.Get(0); val != nil {
		friendship = val.(*models.Friendship)
	}
	return friendship, args.Error(1)
}

func (m *MockFriendshipRepository) Accept(ctx context.Context, friendshipID, userID int64) error {
	args := m.Called(ctx, friendshipID, userID)
	return args.Error(0)
}

func (m *MockFriendshipRepository) Reject(ctx context.Context, friendshipID, userID int64) error {
	args := m.Called(ctx, friendshipID, userID)
	return args.Error(0)
}

func (m *MockFriendshipRepository) Remove(ctx context.Context, friendshipID, userID int64) error {
	args := m.Called(ctx, friendshipID, userID)
	return args.Error(0)
}

func (m *MockFriendshipRepository) ListForUser(ctx context.Context, userID int64) ([]models.FriendshipWithUser, error) {
	args := m.Called(ctx, userID)
	var friendships []models.FriendshipWithUser
	if val := args.Get(0); val != nil {
		friendships = val.([]models.FriendshipWithUser)
	}
	return friendships, args.Error(1)
}

var _ repositories.FriendshipRepository = (*MockFriendshipRepository)(nil)

// MockMessageRepository mocks MessageRepository behavior for handlers.
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) History(ctx context.Context, userID, friendID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID)
	var messages []models.Message
	if val := args.Get(0); val != nil {
		messages = val.([]models.Message)
	}
	return messages, args.Error(1)
}

func (m *MockMessageRepository) HistoryAfter(ctx context.Context, userID, friendID, afterID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, afterID)
	var messages []models.Message
	if val := args.Get(0); val != nil {
		messages = val.([]models.Message)
	}
	return messages, args.Error(1)
}

func (m *MockMessageRepository) Create(ctx context.Context, senderID, recipientID int64, content string, keyTimestamp int64) (*models.Message, error) {
	args := m.Called(ctx, senderID, recipientID, content, keyTimestamp)
	var msg *models.Message
	if val := args.Get(0); val != nil {
		msg = val.(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID int64) error {
	args := m.Called(ctx, recipientID, senderID)
	return args.Error(0)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID, userID int64) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

var _ repositories.MessageRepository = (*MockMessageRepository)(nil)

// MockSongRepository mocks SongRepository behavior for handlers.
type MockSongRepository struct {
	mock.Mock
}

func (m *MockSongRepository) Create(ctx context.Context, song *models.Song) (*models.Song, error) {
	args := m.Called(ctx, song)
	var created *models.Song
	if val := args.Get(0); val != nil {
		created = val.(*models.Song)
	}
	return created, args.Error(1)
}

func (m *MockSongRepository) GetByID(ctx context.Context, id int64) (*models.Song, error) {
	args := m.Called(ctx, id)
	var song *models.Song
	if val := args.Get(0); val != nil {
		song = val.(*models.Song)
	}
	return song, args.Error(1)
}

var _ repositories.SongRepository = (*MockSongRepository)(nil)

// MockPlaylistRepository mocks PlaylistRepository behavior for handlers.
type MockPlaylistRepository struct {
	mock.Mock
}

func (m *MockPlaylistRepository) ListForUser(ctx context.Context, ownerID int64) ([]models.PlaylistSummary, error) {
	args := m.Called(ctx, ownerID)
	var playlists []models.PlaylistSummary
	if val := args.Get(0); val != nil {
		playlists = val.([]models.PlaylistSummary)
	}
	return playlists, args.Error(1)
}

func (m *MockPlaylistRepository) GetOwned(ctx context.Context, playlistID, ownerID int64) (*models.Playlist, error) {
	args := m.Called(ctx, playlistID, ownerID)
	var playlist *models.Playlist
	if val := args.Get(0); val != nil {
		playlist = val.(*models.Playlist)
	}
	return playlist, args.Error(1)
}

func (m *MockPlaylistRepository) Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	args := m.Called(ctx, playlistID)
	var songs []models.PlaylistSong
	if val := args.Get(0); val != nil {
		songs = val.([]models.PlaylistSong)
	}
	return songs, args.Error(1)
}

func (m *MockPlaylistRepository) Create(ctx context.Context, ownerID int64, name string) (*models.Playlist, error) {
	args := m.Called(ctx, ownerID, name)
	var playlist *models.Playlist
	if val := args.Get(0); val != nil {
		playlist = val.(*models.Playlist)
	}
	return playlist, args.Error(1)
}

func (m *MockPlaylistRepository) Rename(ctx context.Context, playlistID, ownerID int64, name string) error {
	args := m.Called(ctx, playlistID, ownerID, name)
	return args.Error(0)
}

func (m *MockPlaylistRepository) Delete(ctx context.Context, playlistID, ownerID int64) error {
	args := m.Called(ctx, playlistID, ownerID)
	return args.Error(0)
}

func (m *MockPlaylistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	args := m.Called(ctx, playlistID, songID)
	return args.Error(0)
}

func (m *MockPlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	args := m.Called(ctx, playlistID, songID)
	return args.Error(0)
}

var _ repositories.PlaylistRepository = (*MockPlaylistRepository)(nil)

// MockFavoriteRepository mocks FavoriteRepository behavior for handlers.
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) ListForUser(ctx context.Context, userID int64) ([]models.FavoriteSong, error) {
	args := m.Called(ctx, userID)
	var favorites []models.FavoriteSong
	if val := args.Get(0); val != nil {
		favorites = val.([]models.FavoriteSong)
	}
	return favorites, args.Error(1)
}

func (m *MockFavoriteRepository) Add(ctx context.Context, userID, songID int64) error {
	args := m.Called(ctx, userID, songID)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Remove(ctx context.Context, userID, songID int64) error {
	args := m.Called(ctx, userID, songID)
	return args.Error(0)
}

var _ repositories.FavoriteRepository = (*MockFavoriteRepository)(nil)

// MockPublisher mocks RabbitMQ publisher behavior for telemetry.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ rabbitmq.Publisher = (*MockPublisher)(nil)
