package library

// booksSchema defines the books table. isbn13 is indexed but
// not UNIQUE: uniqueness is checked at registration time.
const booksSchema = `
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	subtitle TEXT NOT NULL DEFAULT '',
	authors TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	page_count TEXT NOT NULL DEFAULT '',
	isbn13 TEXT NOT NULL,
	published_date TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	memo TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_isbn13 ON books(isbn13);
CREATE INDEX IF NOT EXISTS idx_books_created_at ON books(created_at);
`

const bookColumns = `id, title, subtitle, authors, description, page_count, isbn13, published_date, image_url, memo, created_at`
