package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/bloglist/internal/blogservice"
)

var listWithManyBlogs = []blogservice.Blog{
	{Title: "React patterns", Author: "Michael Chan", URL: "https://reactpatterns.com/", Likes: 7},
	{Title: "Go To Statement Considered Harmful", Author: "Edsger W. Dijkstra", URL: "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html", Likes: 5},
	{Title: "Canonical string reduction", Author: "Edsger W. Dijkstra", URL: "http://www.cs.utexas.edu/~EWD/transcriptions/EWD08xx/EWD808.html", Likes: 12},
	{Title: "First class tests", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2017/05/05/TestDefinitions.htmll", Likes: 10},
	{Title: "TDD harms architecture", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2017/03/03/TDD-Harms-Architecture.html", Likes: 0},
	{Title: "Type wars", Author: "Robert C. Martin", URL: "http://blog.cleancoder.com/uncle-bob/2016/05/01/TypeWars.html", Likes: 2},
}

func TestTotalLikes(t *testing.T) {
	testCases := []struct {
		name  string
		blogs []blogservice.Blog
		want  int
	}{
		{name: "empty list", blogs: nil, want: 0},
		{name: "one blog", blogs: listWithManyBlogs[:1], want: 7},
		{name: "many blogs", blogs: listWithManyBlogs, want: 36},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TotalLikes(tc.blogs))
		})
	}
}

func TestFavoriteBlog(t *testing.T) {
	assert.Equal(t, []Favorite{}, FavoriteBlog(nil))
	assert.Equal(t, []Favorite{}, FavoriteBlog([]blogservice.Blog{}))

	assert.Equal(t, []Favorite{{Title: "Canonical string reduction", Author: "Edsger W. Dijkstra", Likes: 12}}, FavoriteBlog(listWithManyBlogs))

	tied := []blogservice.Blog{
		{Title: "first", Author: "a", Likes: 3},
		{Title: "second", Author: "b", Likes: 3},
	}
	assert.Equal(t, "first", FavoriteBlog(tied)[0].Title)
}

func TestMostBlogs(t *testing.T) {
	assert.Equal(t, AuthorBlogs{}, MostBlogs(nil))
	assert.Equal(t, AuthorBlogs{Author: "Robert C. Martin", Blogs: 3}, MostBlogs(listWithManyBlogs))

	tied := []blogservice.Blog{
		{Author: "b"}, {Author: "a"}, {Author: "a"}, {Author: "b"},
	}
	assert.Equal(t, AuthorBlogs{Author: "b", Blogs: 2}, MostBlogs(tied))
}

func TestMostLikes(t *testing.T) {
	assert.Equal(t, AuthorLikes{}, MostLikes(nil))
	assert.Equal(t, AuthorLikes{Author: "Edsger W. Dijkstra", Likes: 17}, MostLikes(listWithManyBlogs))

	assert.Equal(t, AuthorLikes{}, MostLikes([]blogservice.Blog{{Author: "a", Likes: 0}}))

	tied := []blogservice.Blog{
		{Author: "b", Likes: 4}, {Author: "a", Likes: 6}, {Author: "b", Likes: 2},
	}
	assert.Equal(t, AuthorLikes{Author: "b", Likes: 6}, MostLikes(tied))
}

func TestSummarizeSeededScenario(t *testing.T) {
	blogs := []blogservice.Blog{
		{Title: "A", Author: "Alice", Likes: 7},
		{Title: "B", Author: "Bob", Likes: 5},
		{Title: "C", Author: "Carol", Likes: blogservice.NormalizeLikes(nil)},
	}

	s := Summarize(blogs)
	assert.Equal(t, 12, s.TotalLikes)
	assert.Equal(t, "A", s.FavoriteBlog[0].Title)
	assert.Equal(t, AuthorBlogs{Author: "Alice", Blogs: 1}, s.MostBlogs)
	assert.Equal(t, AuthorLikes{Author: "Alice", Likes: 7}, s.MostLikes)
}
