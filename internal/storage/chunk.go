package storage

// SQLite's default bind parameter limit. Multi-row statements are
// chunked so that rows*varsPerRow never exceeds it.
const maxSQLVars = 999

// chunkRows splits n rows into chunk sizes such that each chunk binds
// at most maxSQLVars parameters at varsPerRow parameters per row.
func chunkRows(n, varsPerRow int) []int {
	perChunk := maxSQLVars / varsPerRow
	if perChunk < 1 {
		perChunk = 1
	}
	var chunks []int
	for n > 0 {
		c := perChunk
		if n < c {
			c = n
		}
		chunks = append(chunks, c)
		n -= c
	}
	return chunks
}

// placeholders builds "?, ?, ..." for n bind parameters.
func placeholders(n int) string {
	out := make([]byte, 0, 3*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, '?')
	}
	return string(out)
}

// repeatValues builds the "(?, ?, ...), (?, ?, ...)" tail of a
// multi-row INSERT for rows rows of varsPerRow parameters.
func repeatValues(rows, varsPerRow int) string {
	row := make([]byte, 0, 2*varsPerRow+2)
	row = append(row, '(')
	for i := 0; i < varsPerRow; i++ {
		if i > 0 {
			row = append(row, ',', ' ')
		}
		row = append(row, '?')
	}
	row = append(row, ')')

	out := make([]byte, 0, rows*(len(row)+2))
	for i := 0; i < rows; i++ {
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, row...)
	}
	return string(out)
}
