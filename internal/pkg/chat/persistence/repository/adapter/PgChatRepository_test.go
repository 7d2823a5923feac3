package adapter

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	chat "go-courier/internal/pkg/chat/domain"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("courier"),
		postgres.WithUsername("courier"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("failed to create pool: %v", err)
	}

	schema, err := os.ReadFile("../../../../../../migrations/0001_init.sql")
	if err != nil {
		log.Fatalf("failed to read schema: %v", err)
	}
	if _, err := testPool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	code := m.Run()

	testPool.Close()
	os.Exit(code)
}

func truncateAll(t *testing.T) {
	t.Cleanup(func() {
		_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE chat.message, chat.conversation, chat.users CASCADE`)
		require.NoError(t, err)
	})
}

func mustCreateUser(t *testing.T, repo *PgChatRepository, username string) string {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), chat.User{
		Username:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func Test_ResolveConversation_BothDirectionsShareOneRow(t *testing.T) {
	truncateAll(t)
	repo := NewPgChatRepository(testPool)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")
	bob := mustCreateUser(t, repo, "bob")

	first, err := repo.ResolveConversation(ctx, alice, bob)
	require.NoError(t, err)
	assert.Less(t, first.UserA, first.UserB, "pair stored in canonical order")

	// The reversed pair hits the conflict path: the insert returns no rows and
	// the existing row is re-selected.
	second, err := repo.ResolveConversation(ctx, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT count(*) FROM chat.conversation`).Scan(&count))
	assert.Equal(t, 1, count)
}

func Test_ResolveConversation_ConcurrentFirstContact(t *testing.T) {
	truncateAll(t)
	repo := NewPgChatRepository(testPool)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")
	bob := mustCreateUser(t, repo, "bob")

	const callers = 8
	ids := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(flip bool) {
			defer wg.Done()
			a, b := alice, bob
			if flip {
				a, b = b, a
			}
			conv, err := repo.ResolveConversation(ctx, a, b)
			assert.NoError(t, err)
			if conv != nil {
				ids <- conv.ID
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(ids)

	var winner string
	for id := range ids {
		if winner == "" {
			winner = id
		}
		assert.Equal(t, winner, id, "every racing caller must land on the same conversation")
	}
	require.NotEmpty(t, winner)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT count(*) FROM chat.conversation`).Scan(&count))
	assert.Equal(t, 1, count, "two concurrent first-contacts create exactly one row")
}

func Test_ResolveConversation_RejectsSelfPair(t *testing.T) {
	truncateAll(t)
	repo := NewPgChatRepository(testPool)

	alice := mustCreateUser(t, repo, "alice")
	_, err := repo.ResolveConversation(context.Background(), alice, alice)
	require.Error(t, err)

	var count int
	require.NoError(t, testPool.QueryRow(context.Background(), `SELECT count(*) FROM chat.conversation`).Scan(&count))
	assert.Zero(t, count, "self-pairs never reach the store")
}

func Test_DeliverBacklog_GuardedAdvancement(t *testing.T) {
	truncateAll(t)
	repo := NewPgChatRepository(testPool)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")
	bob := mustCreateUser(t, repo, "bob")
	conv, err := repo.ResolveConversation(ctx, alice, bob)
	require.NoError(t, err)

	draft, err := chat.NewMessage(chat.Message{SenderID: alice, RecipientID: bob, Text: "hi"})
	require.NoError(t, err)
	draft.ConversationID = conv.ID
	_, err = repo.InsertMessage(ctx, *draft)
	require.NoError(t, err)

	at := time.Now().UTC()
	delivered, err := repo.DeliverBacklog(ctx, bob, at)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, chat.StatusDelivered, delivered[0].Status)
	require.NotNil(t, delivered[0].DeliveredAt)

	again, err := repo.DeliverBacklog(ctx, bob, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, again, "already-advanced rows are excluded, not re-stamped")
}
