package view

// PageSize is the fixed number of rows per page.
const PageSize = 10

// TotalPages returns ceil(total / PageSize), never less than 1.
func TotalPages(total int) int {
	pages := total / PageSize
	if total%PageSize != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Clamp bounds page to [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	return min(max(page, 1), totalPages)
}

// Next advances one page unless page is already the last one.
func Next(page, totalPages int) int {
	if page < totalPages {
		return page + 1
	}
	return page
}

// Previous steps back one page unless page is already the first one.
func Previous(page int) int {
	if page > 1 {
		return page - 1
	}
	return page
}

// Window returns the half-open slice bounds of page within total rows.
func Window(page, total int) (start, end int) {
	start = min((page-1)*PageSize, total)
	end = min(start+PageSize, total)
	return start, end
}
