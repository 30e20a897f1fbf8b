package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
)

// linkChunkSize keeps bulk inserts well below the 65535 bind parameter limit.
const linkChunkSize = 500

// lookupChunkSize bounds the OR list of FindAuras.
const lookupChunkSize = 200

const (
	upsertDomainSQL = `
		INSERT INTO domains (domain_name, last_analyzed)
		VALUES ($1, $2)
		ON CONFLICT (domain_name) DO UPDATE SET last_analyzed = EXCLUDED.last_analyzed
		RETURNING id`

	upsertPageSQL = `
		INSERT INTO pages (domain_id, path_key, title, meta_description, content_map,
			page_aura_star, page_aura_circle, relevance, scoring_version, last_scraped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (domain_id, path_key) DO UPDATE SET
			title = EXCLUDED.title,
			meta_description = EXCLUDED.meta_description,
			content_map = EXCLUDED.content_map,
			page_aura_star = EXCLUDED.page_aura_star,
			page_aura_circle = EXCLUDED.page_aura_circle,
			relevance = EXCLUDED.relevance,
			scoring_version = EXCLUDED.scoring_version,
			last_scraped = EXCLUDED.last_scraped
		RETURNING id`

	deleteTopicsSQL = `DELETE FROM topics WHERE page_id = $1`
	deleteLinksSQL  = `DELETE FROM links WHERE source_page_id = $1`
	deletePageSQL   = `DELETE FROM pages WHERE id = $1`

	findPageIDSQL = `
		SELECT p.id FROM pages p
		JOIN domains d ON d.id = p.domain_id
		WHERE d.domain_name = $1 AND p.path_key = $2`

	findDomainSQL = `
		SELECT id, domain_name, last_analyzed, overall_aura
		FROM domains WHERE domain_name = $1`

	findPageSQL = `
		SELECT id, domain_id, path_key, title, meta_description, content_map,
			page_aura_star, page_aura_circle, relevance, scoring_version, last_scraped
		FROM pages WHERE domain_id = $1 AND path_key = $2`

	findLinksSQL = `
		SELECT source_page_id, target_url, link_text, link_aura
		FROM links WHERE source_page_id = $1 ORDER BY id`
)

// AuraRepoImpl implements AuraRepository on PostgreSQL.
type AuraRepoImpl struct {
	db DB
}

// NewAuraRepo creates a new instance of AuraRepoImpl.
func NewAuraRepo(db DB) *AuraRepoImpl {
	return &AuraRepoImpl{db: db}
}

var _ repository.AuraRepository = (*AuraRepoImpl)(nil)

// SaveCrawl upserts the domain and page, then replaces the page's topics and
// links. Everything happens in one transaction.
func (r *AuraRepoImpl) SaveCrawl(ctx context.Context, rec *entity.CrawlRecord) (*entity.SavedPage, error) {
	contentMap, err := json.Marshal(rec.ContentMap)
	if err != nil {
		return nil, fmt.Errorf("marshal content map: %w", err)
	}
	star, err := json.Marshal(rec.Aura.Star)
	if err != nil {
		return nil, fmt.Errorf("marshal star: %w", err)
	}
	circle, err := json.Marshal(rec.Aura.Circle)
	if err != nil {
		return nil, fmt.Errorf("marshal circle: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	saved := &entity.SavedPage{}
	if err := tx.QueryRow(ctx, upsertDomainSQL, rec.Domain, rec.ScrapedAt).Scan(&saved.DomainID); err != nil {
		return nil, fmt.Errorf("upsert domain %s: %w", rec.Domain, err)
	}

	err = tx.QueryRow(ctx, upsertPageSQL,
		saved.DomainID,
		rec.PathKey,
		rec.Title,
		rec.MetaDescription,
		contentMap,
		star,
		circle,
		rec.Aura.Relevance,
		rec.ScoringVersion,
		rec.ScrapedAt,
	).Scan(&saved.PageID)
	if err != nil {
		return nil, fmt.Errorf("upsert page %s%s: %w", rec.Domain, rec.PathKey, err)
	}

	if _, err := tx.Exec(ctx, deleteTopicsSQL, saved.PageID); err != nil {
		return nil, fmt.Errorf("delete topics: %w", err)
	}
	if err := insertTopics(ctx, tx, saved.PageID, rec.Topics); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, deleteLinksSQL, saved.PageID); err != nil {
		return nil, fmt.Errorf("delete links: %w", err)
	}
	if err := insertLinks(ctx, tx, saved.PageID, rec.Links); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit crawl: %w", err)
	}
	return saved, nil
}

func insertTopics(ctx context.Context, tx pgx.Tx, pageID int64, topics []string) error {
	if len(topics) == 0 {
		return nil
	}
	q := psql.Insert("topics").Columns("page_id", "topic")
	for _, topic := range topics {
		q = q.Values(pageID, topic)
	}
	query, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build topics insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert topics: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx pgx.Tx, pageID int64, links []entity.Link) error {
	for start := 0; start < len(links); start += linkChunkSize {
		end := min(start+linkChunkSize, len(links))

		q := psql.Insert("links").Columns("source_page_id", "target_url", "link_text", "link_aura")
		for _, l := range links[start:end] {
			aura, err := json.Marshal(l.Aura)
			if err != nil {
				return fmt.Errorf("marshal link aura: %w", err)
			}
			q = q.Values(pageID, l.TargetURL, l.Text, aura)
		}
		query, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build links insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert links: %w", err)
		}
	}
	return nil
}

// DeletePage removes a page, its topics and its links in one transaction.
func (r *AuraRepoImpl) DeletePage(ctx context.Context, ref entity.PageRef) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var pageID int64
	err = tx.QueryRow(ctx, findPageIDSQL, ref.Domain, ref.PathKey).Scan(&pageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return tx.Commit(ctx)
	}
	if err != nil {
		return fmt.Errorf("find page %s%s: %w", ref.Domain, ref.PathKey, err)
	}

	for _, stmt := range []string{deleteLinksSQL, deleteTopicsSQL, deletePageSQL} {
		if _, err := tx.Exec(ctx, stmt, pageID); err != nil {
			return fmt.Errorf("delete page %d: %w", pageID, err)
		}
	}
	return tx.Commit(ctx)
}

// FindDomain returns repository.ErrNotFound for unknown domains.
func (r *AuraRepoImpl) FindDomain(ctx context.Context, name string) (*entity.Domain, error) {
	var (
		d    entity.Domain
		aura []byte
	)
	err := r.db.QueryRow(ctx, findDomainSQL, name).Scan(&d.ID, &d.Name, &d.LastAnalyzed, &aura)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find domain %s: %w", name, err)
	}
	if len(aura) > 0 {
		var c entity.Circle
		if err := json.Unmarshal(aura, &c); err != nil {
			return nil, fmt.Errorf("decode domain aura: %w", err)
		}
		d.OverallAura = &c
	}
	return &d, nil
}

// FindPage returns repository.ErrNotFound for unknown pages.
func (r *AuraRepoImpl) FindPage(ctx context.Context, domainID int64, pathKey string) (*entity.Page, error) {
	var (
		p                        entity.Page
		contentMap, star, circle []byte
	)
	err := r.db.QueryRow(ctx, findPageSQL, domainID, pathKey).Scan(
		&p.ID,
		&p.DomainID,
		&p.PathKey,
		&p.Title,
		&p.MetaDescription,
		&contentMap,
		&star,
		&circle,
		&p.Aura.Relevance,
		&p.ScoringVersion,
		&p.LastScraped,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find page %d%s: %w", domainID, pathKey, err)
	}
	if err := json.Unmarshal(contentMap, &p.ContentMap); err != nil {
		return nil, fmt.Errorf("decode content map: %w", err)
	}
	if err := json.Unmarshal(star, &p.Aura.Star); err != nil {
		return nil, fmt.Errorf("decode star: %w", err)
	}
	if err := json.Unmarshal(circle, &p.Aura.Circle); err != nil {
		return nil, fmt.Errorf("decode circle: %w", err)
	}
	return &p, nil
}

func (r *AuraRepoImpl) FindLinks(ctx context.Context, pageID int64) ([]entity.Link, error) {
	rows, err := r.db.Query(ctx, findLinksSQL, pageID)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []entity.Link
	for rows.Next() {
		var (
			l    entity.Link
			aura []byte
		)
		if err := rows.Scan(&l.SourcePageID, &l.TargetURL, &l.Text, &aura); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if err := json.Unmarshal(aura, &l.Aura); err != nil {
			return nil, fmt.Errorf("decode link aura: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// FindAuras looks up the stored aura of every referenced page that exists.
func (r *AuraRepoImpl) FindAuras(ctx context.Context, refs []entity.PageRef) (map[entity.PageRef]entity.Aura, error) {
	out := make(map[entity.PageRef]entity.Aura)
	for start := 0; start < len(refs); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(refs))

		or := sq.Or{}
		for _, ref := range refs[start:end] {
			or = append(or, sq.Eq{"d.domain_name": ref.Domain, "p.path_key": ref.PathKey})
		}
		query, args, err := psql.
			Select("d.domain_name", "p.path_key", "p.page_aura_circle", "p.page_aura_star").
			From("pages p").
			Join("domains d ON d.id = p.domain_id").
			Where(or).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build aura lookup: %w", err)
		}
		if err := r.scanAuras(ctx, query, args, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *AuraRepoImpl) scanAuras(ctx context.Context, query string, args []any, out map[entity.PageRef]entity.Aura) error {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query auras: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ref          entity.PageRef
			circle, star []byte
			aura         entity.Aura
		)
		if err := rows.Scan(&ref.Domain, &ref.PathKey, &circle, &star); err != nil {
			return fmt.Errorf("scan aura: %w", err)
		}
		if err := json.Unmarshal(circle, &aura.Circle); err != nil {
			return fmt.Errorf("decode circle: %w", err)
		}
		if err := json.Unmarshal(star, &aura.Star); err != nil {
			return fmt.Errorf("decode star: %w", err)
		}
		out[ref] = aura
	}
	return rows.Err()
}
