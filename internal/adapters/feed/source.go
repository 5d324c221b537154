package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"feed-summary-bot/internal/domain"
	"feed-summary-bot/internal/infra/metrics"
)

const userAgent = "feed-summary-bot/1.0"

// HTTPSource загружает и разбирает RSS 2.0 и Atom ленты.
type HTTPSource struct {
	client *http.Client
}

var _ domain.FeedSource = (*HTTPSource)(nil)

// NewHTTPSource создаёт источник лент.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPSource{client: client}
}

// Fetch возвращает элементы ленты по URL.
func (s *HTTPSource) Fetch(ctx context.Context, url string) ([]domain.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("feed", "fetch", url, start, err)
		return nil, fmt.Errorf("запрос ленты: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("лента вернула %s", resp.Status)
		metrics.ObserveNetworkRequest("feed", "fetch", url, start, err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("feed", "fetch", url, start, err)
		return nil, fmt.Errorf("чтение ленты: %w", err)
	}
	metrics.ObserveNetworkRequest("feed", "fetch", url, start, nil)

	return Parse(body)
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	GUID        string   `xml:"guid"`
	Link        string   `xml:"link"`
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
	Encoded     []string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string     `xml:"id"`
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Content string     `xml:"content"`
	Summary string     `xml:"summary"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// decodeXML разбирает документ с учётом заявленной кодировки: ленты
// нередко отдаются в windows-1251 и подобных.
func decodeXML(body []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

// Parse разбирает тело ленты. Неизвестный формат — ошибка, которую
// планировщик изолирует на уровне одной ленты.
func Parse(body []byte) ([]domain.Entry, error) {
	var rss rssDocument
	if err := decodeXML(body, &rss); err == nil {
		entries := make([]domain.Entry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			entries = append(entries, domain.Entry{
				ID:          strings.TrimSpace(item.GUID),
				Link:        strings.TrimSpace(item.Link),
				Title:       strings.TrimSpace(item.Title),
				Content:     strings.TrimSpace(strings.Join(item.Encoded, "")),
				Description: strings.TrimSpace(item.Description),
			})
		}
		return entries, nil
	}

	var atom atomDocument
	if err := decodeXML(body, &atom); err == nil {
		entries := make([]domain.Entry, 0, len(atom.Entries))
		for _, item := range atom.Entries {
			entries = append(entries, domain.Entry{
				ID:          strings.TrimSpace(item.ID),
				Link:        pickAtomLink(item.Links),
				Title:       strings.TrimSpace(item.Title),
				Content:     strings.TrimSpace(item.Content),
				Description: strings.TrimSpace(item.Summary),
			})
		}
		return entries, nil
	}

	return nil, fmt.Errorf("не удалось разобрать ленту")
}

func pickAtomLink(links []atomLink) string {
	for _, link := range links {
		if link.Rel == "" || link.Rel == "alternate" {
			return strings.TrimSpace(link.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}
