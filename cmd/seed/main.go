package main

import (
	"context"
	stdLog "log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vshaniya/library-manager/config"
	"github.com/vshaniya/library-manager/internal/model"
	"github.com/vshaniya/library-manager/internal/repository"
	"github.com/vshaniya/library-manager/migrations"
	"github.com/vshaniya/library-manager/pkg/logger"
	"github.com/vshaniya/library-manager/pkg/postgres"
)

// Loads a small sample catalog for local development.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Fatal("load envs from .env ", err)
	}
	cfg := config.NewConfig()
	log := logger.NewLogger(cfg.Log, "seed")

	ctx := context.Background()
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	defer db.Close()

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	authorNames := []string{
		"J.K. Rowling",
		"George Orwell",
		"Harper Lee",
		"F. Scott Fitzgerald",
		"Jane Austen",
		"Stephen King",
		"Agatha Christie",
	}
	authorIDs := make([]int, 0, len(authorNames))
	for _, name := range authorNames {
		author, err := repo.CreateAuthor(ctx, model.CreateAuthorRequest{Name: name})
		if err != nil {
			log.Fatal("create author", zap.String("name", name), zap.Error(err))
		}
		authorIDs = append(authorIDs, author.ID)
	}

	type seedBook struct {
		title  string
		author int
		year   int
		isbn   string
	}
	books := []seedBook{
		{"Harry Potter and the Philosopher's Stone", 0, 1997, "9780747532699"},
		{"1984", 1, 1949, "9780451524935"},
		{"To Kill a Mockingbird", 2, 1960, "9780446310789"},
		{"The Great Gatsby", 3, 1925, "9780743273565"},
		{"Pride and Prejudice", 4, 1813, "9780141439518"},
		{"The Shining", 5, 1977, "9780307743657"},
		{"Murder on the Orient Express", 6, 1934, "9780062693662"},
		{"Harry Potter and the Chamber of Secrets", 0, 1998, "9780747538493"},
	}
	borrowers := []model.CreateBorrowerRequest{
		{Name: "John Smith", Email: "john.smith@email.com", Phone: ptr("123-456-7890")},
		{Name: "Sarah Johnson", Email: "sarah.j@email.com", Phone: ptr("098-765-4321")},
		{Name: "Mike Brown", Email: "mike.brown@email.com", Phone: ptr("555-123-4567")},
		{Name: "Emily Davis", Email: "emily.davis@email.com", Phone: ptr("444-987-6543")},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, b := range books {
			req := model.CreateBookRequest{
				Title:           b.title,
				AuthorID:        authorIDs[b.author],
				PublicationYear: ptr(b.year),
				ISBN:            ptr(b.isbn),
			}
			if _, err := repo.CreateBook(gctx, req); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, req := range borrowers {
			if _, err := repo.CreateBorrower(gctx, req); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatal("seed", zap.Error(err))
	}

	log.Info("sample data added",
		zap.Int("authors", len(authorNames)),
		zap.Int("books", len(books)),
		zap.Int("borrowers", len(borrowers)),
	)
}

func ptr[T any](v T) *T { return &v }
