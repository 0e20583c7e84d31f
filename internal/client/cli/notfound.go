package cli

import "context"

func (a *App) renderNotFound(ctx context.Context, path string) {
	a.log.Error(ctx, "404 Error: User attempted to access non-existent route:", "path", path)

	printlnFn("404")
	printlnFn("Oops! The page you're looking for doesn't exist.")
	printlnFn("Type 'go /' to return home.")
}
