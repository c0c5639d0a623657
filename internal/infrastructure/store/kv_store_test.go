package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKVStore runs the behaviour every backend must share
func exerciseKVStore(t *testing.T, s KVStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "cart", `[{"id":1,"quantity":2}]`))
	v, ok, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1,"quantity":2}]`, v)

	// Overwrite
	require.NoError(t, s.Set(ctx, "cart", `[]`))
	v, _, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Delete(ctx, "cart"))
	_, ok, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is fine
	require.NoError(t, s.Delete(ctx, "cart"))

	assert.ErrorIs(t, s.Set(ctx, "", "x"), ErrEmptyKey)
	_, _, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), ErrEmptyKey)
}

// ============================================
// Memory Store Tests
// ============================================

func TestMemoryStore(t *testing.T) {
	exerciseKVStore(t, NewMemoryStore())
}

// ============================================
// File Store Tests
// ============================================

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)
	exerciseKVStore(t, s)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(root, "alice")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "token", "abc"))

	second, err := NewFileStore(root, "alice")
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestFileStore_NamespacesAreIsolated(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	alice, err := NewFileStore(root, "alice")
	require.NoError(t, err)
	bob, err := NewFileStore(root, "bob")
	require.NoError(t, err)

	require.NoError(t, alice.Set(ctx, "token", "alice-token"))

	_, ok, err := bob.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_RejectsNamespacesOutsideRoot(t *testing.T) {
	tests := []string{".", "..", "a/b", "../outside", `a\b`}

	for _, namespace := range tests {
		t.Run(namespace, func(t *testing.T) {
			root := t.TempDir()

			_, err := NewFileStore(root, namespace)

			assert.ErrorIs(t, err, ErrBadNamespace)
			entries, readErr := os.ReadDir(root)
			require.NoError(t, readErr)
			assert.Empty(t, entries)
		})
	}
}

func TestFileStore_DottedNamespaceStaysInsideRoot(t *testing.T) {
	root := t.TempDir()

	s, err := NewFileStore(root, "...")

	require.NoError(t, err)
	assert.Equal(t, root, filepath.Dir(s.Dir()))
}

func TestFileStore_KeysAreEscaped(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "../escape", "v"))
	v, ok, err := s.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

// ============================================
// Postgres Store Tests
// ============================================

func TestPostgresStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "")
	query := regexp.QuoteMeta("SELECT value FROM storefront_kv WHERE namespace = $1 AND key = $2")

	mock.ExpectQuery(query).
		WithArgs(DefaultNamespace, "cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))
	mock.ExpectQuery(query).
		WithArgs(DefaultNamespace, "token").
		WillReturnError(sql.ErrNoRows)

	v, ok, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	_, ok, err = s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "alice")

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO storefront_kv (namespace, key, value, updated_at)`)).
		WithArgs("alice", "token", "abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "token", "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "alice")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM storefront_kv WHERE namespace = $1 AND key = $2")).
		WithArgs("alice", "token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WrapsErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "")
	dbErr := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO storefront_kv")).WillReturnError(dbErr)

	err = s.Set(context.Background(), "cart", "[]")
	assert.ErrorIs(t, err, dbErr)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS storefront_kv")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db, "").EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ============================================
// Redis Store Tests
// ============================================

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStore(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	s := NewRedisStore(client, "")
	defer s.Close()

	exerciseKVStore(t, s)
}

func TestRedisStore_KeyPrefix(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	s := NewRedisStore(client, "alice")
	require.NoError(t, s.Set(context.Background(), "token", "abc"))

	v, err := mr.Get("storefront:alice:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

// ============================================
// DynamoDB Store Tests
// ============================================

type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	err   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func fakeKey(key map[string]types.AttributeValue) string {
	ns := key["namespace"].(*types.AttributeValueMemberS).Value
	k := key["key"].(*types.AttributeValueMemberS).Value
	return ns + "/" + k
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[fakeKey(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[fakeKey(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, fakeKey(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	exerciseKVStore(t, NewDynamoStore(newFakeDynamo(), "storefront", ""))
}

func TestDynamoStore_ItemShape(t *testing.T) {
	fake := newFakeDynamo()
	s := NewDynamoStore(fake, "storefront", "alice")

	require.NoError(t, s.Set(context.Background(), "token", "abc"))

	item := fake.items["alice/token"]
	require.NotNil(t, item)
	assert.Equal(t, "abc", item["value"].(*types.AttributeValueMemberS).Value)
	assert.NotEmpty(t, item["updated_at"].(*types.AttributeValueMemberS).Value)
}

func TestDynamoStore_WrapsErrors(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = errors.New("throttled")
	s := NewDynamoStore(fake, "storefront", "")

	_, _, err := s.Get(context.Background(), "cart")
	assert.ErrorIs(t, err, fake.err)
	assert.ErrorIs(t, s.Set(context.Background(), "cart", "[]"), fake.err)
	assert.ErrorIs(t, s.Delete(context.Background(), "cart"), fake.err)
}

// ============================================
// Open Tests
// ============================================

func TestOpen_FileAndMemory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestOpen_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := Open(context.Background(), Options{Driver: DriverRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &RedisStore{}, s)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Options{Driver: "floppy"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, Options{Driver: DriverDynamo})
	assert.Error(t, err)
}
