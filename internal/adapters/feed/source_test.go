package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Example</title>
    <item>
      <guid>guid-1</guid>
      <link>https://example.com/posts/1</link>
      <title>Первая запись</title>
      <description>Короткое описание</description>
      <content:encoded><![CDATA[<p>Полный текст записи</p>]]></content:encoded>
    </item>
    <item>
      <link>https://example.com/posts/2</link>
      <title>Без guid</title>
      <description>Описание второй записи</description>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <id>urn:uuid:entry-1</id>
    <title>Запись Atom</title>
    <link rel="alternate" href="https://example.com/atom/1"/>
    <summary>Краткое содержание</summary>
    <content>Полное содержимое записи</content>
  </entry>
</feed>`

func TestParseRSS(t *testing.T) {
	entries, err := Parse([]byte(rssFixture))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ожидали 2 элемента, получили %d", len(entries))
	}

	first := entries[0]
	if first.ID != "guid-1" || first.GUID() != "guid-1" {
		t.Fatalf("неожиданный идентификатор: %q", first.GUID())
	}
	if first.Content != "<p>Полный текст записи</p>" {
		t.Fatalf("неожиданное содержимое: %q", first.Content)
	}
	if first.Description != "Короткое описание" {
		t.Fatalf("неожиданное описание: %q", first.Description)
	}

	second := entries[1]
	if second.ID != "" {
		t.Fatalf("у второго элемента не должно быть guid: %q", second.ID)
	}
	if second.GUID() != "https://example.com/posts/2" {
		t.Fatalf("идентификатором должна стать ссылка: %q", second.GUID())
	}
}

func TestParseAtom(t *testing.T) {
	entries, err := Parse([]byte(atomFixture))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ожидали 1 элемент, получили %d", len(entries))
	}
	entry := entries[0]
	if entry.ID != "urn:uuid:entry-1" {
		t.Fatalf("неожиданный идентификатор: %q", entry.ID)
	}
	if entry.Link != "https://example.com/atom/1" {
		t.Fatalf("неожиданная ссылка: %q", entry.Link)
	}
	if entry.Content != "Полное содержимое записи" {
		t.Fatalf("неожиданное содержимое: %q", entry.Content)
	}
	if entry.Description != "Краткое содержание" {
		t.Fatalf("неожиданное описание: %q", entry.Description)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("это не XML")); err == nil {
		t.Fatal("мусор на входе должен давать ошибку")
	}
}

func TestParseWindows1251(t *testing.T) {
	// Заголовок «Тест» и описание «описание» в байтах windows-1251.
	body := []byte("<?xml version=\"1.0\" encoding=\"windows-1251\"?>" +
		"<rss version=\"2.0\"><channel><item>" +
		"<guid>1</guid>" +
		"<title>\xd2\xe5\xf1\xf2</title>" +
		"<description>\xee\xef\xe8\xf1\xe0\xed\xe8\xe5</description>" +
		"</item></channel></rss>")

	entries, err := Parse(body)
	if err != nil {
		t.Fatalf("лента в windows-1251 должна разбираться: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ожидали 1 элемент, получили %d", len(entries))
	}
	if entries[0].Title != "Тест" {
		t.Fatalf("заголовок должен перекодироваться в UTF-8, получили %q", entries[0].Title)
	}
	if entries[0].Description != "описание" {
		t.Fatalf("описание должно перекодироваться в UTF-8, получили %q", entries[0].Description)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Fatalf("неожиданный User-Agent: %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	source := NewHTTPSource(nil)
	entries, err := source.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ожидали 2 элемента, получили %d", len(entries))
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPSource(nil)
	if _, err := source.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("ошибка HTTP должна возвращаться вызывающему")
	}
}
