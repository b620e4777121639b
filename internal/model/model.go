package model

type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
)

// DefaultImageURL is used for books created without a cover image.
const DefaultImageURL = "https://via.placeholder.com/150x200?text=No+Image"

type Author struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Biography *string `json:"biography" db:"biography"`
	BirthDate *Date   `json:"birth_date" db:"birth_date"`
}

type Book struct {
	ID              int     `json:"id" db:"id"`
	Title           string  `json:"title" db:"title"`
	AuthorID        int     `json:"author_id" db:"author_id"`
	AuthorName      string  `json:"author_name" db:"author_name"`
	Description     *string `json:"description" db:"description"`
	PublicationYear *int    `json:"publication_year" db:"publication_year"`
	ISBN            *string `json:"isbn" db:"isbn"`
	Genre           *string `json:"genre" db:"genre"`
	Pages           *int    `json:"pages" db:"pages"`
	ImageURL        string  `json:"image_url" db:"image_url"`
	Available       bool    `json:"available" db:"available"`
}

type Borrower struct {
	ID    int     `json:"id" db:"id"`
	Name  string  `json:"name" db:"name"`
	Email string  `json:"email" db:"email"`
	Phone *string `json:"phone" db:"phone"`
}

type Loan struct {
	ID           int    `json:"id" db:"id"`
	BookID       int    `json:"book_id" db:"book_id"`
	BookTitle    string `json:"book_title" db:"book_title"`
	BorrowerID   int    `json:"borrower_id" db:"borrower_id"`
	BorrowerName string `json:"borrower_name" db:"borrower_name"`
	LoanDate     Date   `json:"loan_date" db:"loan_date"`
	DueDate      Date   `json:"due_date" db:"due_date"`
	ReturnDate   *Date  `json:"return_date" db:"return_date"`
	Status       Status `json:"status" db:"status"`
}

type CreateAuthorRequest struct {
	Name      string  `json:"name" validate:"required"`
	Biography *string `json:"biography"`
	BirthDate *Date   `json:"birth_date"`
}

type UpdateAuthorRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Biography *string `json:"biography"`
	BirthDate *Date   `json:"birth_date"`
}

type CreateBookRequest struct {
	Title           string  `json:"title" validate:"required"`
	AuthorID        int     `json:"author_id" validate:"required"`
	Description     *string `json:"description"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn" validate:"omitempty,max=13"`
	Genre           *string `json:"genre"`
	Pages           *int    `json:"pages" validate:"omitempty,gt=0"`
	ImageURL        *string `json:"image_url"`
}

type UpdateBookRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	AuthorID        *int    `json:"author_id"`
	Description     *string `json:"description"`
	PublicationYear *int    `json:"publication_year"`
	ISBN            *string `json:"isbn" validate:"omitempty,max=13"`
	Genre           *string `json:"genre"`
	Pages           *int    `json:"pages" validate:"omitempty,gt=0"`
	ImageURL        *string `json:"image_url"`
}

type CreateBorrowerRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone"`
}

type UpdateBorrowerRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

type CreateLoanRequest struct {
	BookID       int `json:"book_id" validate:"required"`
	BorrowerID   int `json:"borrower_id" validate:"required"`
	DaysToReturn int `json:"days_to_return" validate:"omitempty,gt=0"`
}
