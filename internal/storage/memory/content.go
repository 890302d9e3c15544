package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/cinestream/internal/models"
)

const sectionSize = 6

// HomeSections собирает подборки главной страницы.
func (s *Storage) HomeSections(ctx context.Context) (models.HomeSections, error) {
	const op = "storage.memory.HomeSections"
	if err := checkCtx(ctx, op); err != nil {
		return models.HomeSections{}, err
	}

	s.mu.RLock()
	all := slices.Clone(s.content)
	s.mu.RUnlock()

	top := func(items []models.Content) []models.Content {
		return slices.Clone(items[:min(sectionSize, len(items))])
	}

	trending := slices.Clone(all)
	slices.SortStableFunc(trending, func(a, b models.Content) int { return cmp.Compare(b.Rating, a.Rating) })

	latest := slices.Clone(all)
	slices.SortStableFunc(latest, func(a, b models.Content) int { return cmp.Compare(b.Year, a.Year) })

	var originals, recommended []models.Content
	for _, c := range all {
		if slices.Contains(c.Tags, "original") {
			originals = append(originals, c)
		} else {
			recommended = append(recommended, c)
		}
	}

	return models.HomeSections{
		Trending:    top(trending),
		Latest:      top(latest),
		Originals:   top(originals),
		Recommended: top(recommended),
	}, nil
}

// Search ищет тайтлы: q ищется как подстрока названия или описания без учёта регистра,
// genre и language сравниваются без учёта регистра, year точно.
func (s *Storage) Search(ctx context.Context, q models.SearchQuery) ([]models.Content, error) {
	const op = "storage.memory.Search"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Q))

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []models.Content{}
	for _, c := range s.content {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			continue
		}
		if q.Genre != "" && !strings.EqualFold(c.Genre, q.Genre) {
			continue
		}
		if q.Language != "" && !strings.EqualFold(c.Language, q.Language) {
			continue
		}
		if q.Year > 0 && c.Year != q.Year {
			continue
		}
		results = append(results, c)
	}
	return results, nil
}

func (s *Storage) indexOf(id string) int {
	return slices.IndexFunc(s.content, func(c models.Content) bool { return c.ID == id })
}

// ContentDetails возвращает тайтл с отзывами и отмечает просмотр.
// userID может быть пустым для анонимного запроса.
func (s *Storage) ContentDetails(ctx context.Context, id, userID string) (*models.ContentDetails, error) {
	const op = "storage.memory.ContentDetails"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.views[id]++

	details := &models.ContentDetails{
		Content: s.content[idx],
		Reviews: slices.Clone(s.reviews[id]),
	}
	if userID != "" {
		details.InWatchlist = slices.Contains(s.watchlist[userID], id)
		for _, r := range s.reviews[id] {
			if r.UserID == userID {
				review := r
				details.MyReview = &review
				break
			}
		}
	}
	return details, nil
}

// SaveReview сохраняет отзыв пользователя (повторный отзыв заменяет прежний)
// и пересчитывает средний рейтинг тайтла.
func (s *Storage) SaveReview(ctx context.Context, contentID string, review models.Review) error {
	const op = "storage.memory.SaveReview"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(contentID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	reviews := slices.DeleteFunc(s.reviews[contentID], func(r models.Review) bool {
		return r.UserID == review.UserID
	})
	reviews = append(reviews, review)
	s.reviews[contentID] = reviews

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	s.content[idx].Rating = float64(sum) / float64(len(reviews))
	return nil
}

// ===== WATCHLIST =====

// Watchlist возвращает список пользователя в порядке добавления.
func (s *Storage) Watchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	const op = "storage.memory.Watchlist"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.WatchlistItem{}
	for _, id := range s.watchlist[userID] {
		if idx := s.indexOf(id); idx >= 0 {
			items = append(items, models.WatchlistItem{ID: id, Content: s.content[idx]})
		}
	}
	return items, nil
}

// AddToWatchlist добавляет тайтл; повторное добавление ничего не меняет.
func (s *Storage) AddToWatchlist(ctx context.Context, userID, contentID string) error {
	const op = "storage.memory.AddToWatchlist"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(contentID) < 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if !slices.Contains(s.watchlist[userID], contentID) {
		s.watchlist[userID] = append(s.watchlist[userID], contentID)
	}
	return nil
}

// RemoveFromWatchlist убирает тайтл из списка.
func (s *Storage) RemoveFromWatchlist(ctx context.Context, userID, contentID string) error {
	const op = "storage.memory.RemoveFromWatchlist"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.watchlist[userID]
	idx := slices.Index(list, contentID)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.watchlist[userID] = slices.Delete(list, idx, idx+1)
	return nil
}

// ===== ADMIN CONTENT =====

// ListContent возвращает страницу каталога и общее число тайтлов.
func (s *Storage) ListContent(ctx context.Context, page models.Page) ([]models.Content, int, error) {
	const op = "storage.memory.ListContent"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := paginate(len(s.content), page)
	return slices.Clone(s.content[start:end]), len(s.content), nil
}

// CreateContent добавляет тайтл в каталог.
func (s *Storage) CreateContent(ctx context.Context, input models.ContentInput) (models.Content, error) {
	const op = "storage.memory.CreateContent"
	if err := checkCtx(ctx, op); err != nil {
		return models.Content{}, err
	}

	c := models.Content{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(input.Title),
		Genre:     input.Genre,
		Year:      input.Year,
		Language:  input.Language,
		StreamURL: input.StreamURL,
		Thumbnail: input.Thumbnail,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = append(s.content, c)
	return c, nil
}

// UpdateContent применяет частичное обновление к тайтлу.
func (s *Storage) UpdateContent(ctx context.Context, id string, patch models.ContentPatch) (models.Content, error) {
	const op = "storage.memory.UpdateContent"
	if err := checkCtx(ctx, op); err != nil {
		return models.Content{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Content{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	c := &s.content[idx]
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Year != nil {
		c.Year = *patch.Year
	}
	if patch.Genre != nil {
		c.Genre = *patch.Genre
	}
	if patch.Language != nil {
		c.Language = *patch.Language
	}
	if patch.StreamURL != nil {
		c.StreamURL = *patch.StreamURL
	}
	if patch.Thumbnail != nil {
		c.Thumbnail = *patch.Thumbnail
	}
	return *c, nil
}

// DeleteContent удаляет тайтл вместе с отзывами и ссылками из списков.
func (s *Storage) DeleteContent(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteContent"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.content = slices.Delete(s.content, idx, idx+1)
	delete(s.reviews, id)
	delete(s.views, id)
	for user, list := range s.watchlist {
		s.watchlist[user] = slices.DeleteFunc(list, func(c string) bool { return c == id })
	}
	return nil
}
