// Package stats reduces a blog collection to summary statistics. Every function
// is pure and defined for empty input.
package stats

import "github.com/sushihentaime/bloglist/internal/blogservice"

type Favorite struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

type Summary struct {
	TotalLikes   int         `json:"total_likes"`
	FavoriteBlog []Favorite  `json:"favorite_blog"`
	MostBlogs    AuthorBlogs `json:"most_blogs"`
	MostLikes    AuthorLikes `json:"most_likes"`
}

func TotalLikes(blogs []blogservice.Blog) int {
	total := 0
	for _, b := range blogs {
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes as a single element slice,
// or an empty slice when there are no blogs. On a tie the earliest blog wins.
func FavoriteBlog(blogs []blogservice.Blog) []Favorite {
	if len(blogs) == 0 {
		return []Favorite{}
	}

	fav := blogs[0]
	for _, b := range blogs[1:] {
		if b.Likes > fav.Likes {
			fav = b
		}
	}

	return []Favorite{{Title: fav.Title, Author: fav.Author, Likes: fav.Likes}}
}

// MostBlogs returns the author with the most blogs. Authors are ranked in order of
// first appearance and only a strictly greater count replaces the leader.
func MostBlogs(blogs []blogservice.Blog) AuthorBlogs {
	authors, counts := tally(blogs, func(blogservice.Blog) int { return 1 })

	var best AuthorBlogs
	for _, author := range authors {
		if counts[author] > best.Blogs {
			best = AuthorBlogs{Author: author, Blogs: counts[author]}
		}
	}

	return best
}

// MostLikes returns the author whose blogs have the most likes in total, with the
// same tie-break as MostBlogs. Authors whose total is zero never lead.
func MostLikes(blogs []blogservice.Blog) AuthorLikes {
	authors, likes := tally(blogs, func(b blogservice.Blog) int { return b.Likes })

	var best AuthorLikes
	for _, author := range authors {
		if likes[author] > best.Likes {
			best = AuthorLikes{Author: author, Likes: likes[author]}
		}
	}

	return best
}

func Summarize(blogs []blogservice.Blog) Summary {
	return Summary{
		TotalLikes:   TotalLikes(blogs),
		FavoriteBlog: FavoriteBlog(blogs),
		MostBlogs:    MostBlogs(blogs),
		MostLikes:    MostLikes(blogs),
	}
}

// tally sums weight per author and returns the authors in first-appearance order.
func tally(blogs []blogservice.Blog, weight func(blogservice.Blog) int) ([]string, map[string]int) {
	var authors []string
	sums := make(map[string]int)

	for _, b := range blogs {
		if _, ok := sums[b.Author]; !ok {
			authors = append(authors, b.Author)
		}
		sums[b.Author] += weight(b)
	}

	return authors, sums
}
