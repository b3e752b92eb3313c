package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/bilirec/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	referer          = "https://www.bilibili.com/"

	livePageSize     = 10
	favPageSize      = 20
	followGroupPage  = 50
	appBuild         = "7390300"
	appMobiApp       = "android"
	appDeviceProfile = "phone"
)

// Config holds endpoints and credentials for the client
type Config struct {
	WebURL    string
	AppURL    string
	LiveURL   string
	UserAgent string
	SessData  string
	BiliJct   string
	AccessKey string
	Timeout   time.Duration

	// HTTPClient overrides the default client, tests point it at httptest
	HTTPClient *http.Client
}

// Client implements every feed repository against the public web/app APIs
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: hc, logger: logger}
}

// doRequest performs a GET with the session cookie and returns the
// envelope's data payload
func (c *Client) doRequest(ctx context.Context, base, path string, query url.Values) (json.RawMessage, error) {
	reqURL := base + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", referer)
	if c.cfg.SessData != "" {
		req.Header.Set("Cookie", fmt.Sprintf("SESSDATA=%s; bili_jct=%s", c.cfg.SessData, c.cfg.BiliJct))
	}

	c.logger.Debug("bilibili request", "path", path, "query", query.Encode())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", path, ctx.Err())
		}
		c.logger.Error("bilibili request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("bilibili request error", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, path)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Code != 0 {
		c.logger.Warn("bilibili api error", "path", path, "code", env.Code, "message", env.Message)
		return nil, &domain.APIError{Code: env.Code, Message: env.Message, Path: path}
	}
	return env.Data, nil
}

// get decodes the data payload into dest
func (c *Client) get(ctx context.Context, base, path string, query url.Values, dest any) error {
	data, err := c.doRequest(ctx, base, path, query)
	if err != nil {
		return err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// GetAppRecommend returns the app feed page after idx
func (c *Client) GetAppRecommend(ctx context.Context, idx int64) (*domain.AppPage, error) {
	query := url.Values{}
	query.Set("idx", strconv.FormatInt(idx, 10))
	query.Set("pull", strconv.FormatBool(idx == 0))
	query.Set("column", "4")
	query.Set("build", appBuild)
	query.Set("mobi_app", appMobiApp)
	query.Set("device", appDeviceProfile)
	if c.cfg.AccessKey != "" {
		query.Set("access_key", c.cfg.AccessKey)
	}

	var data appFeedData
	if err := c.get(ctx, c.cfg.AppURL, "/x/v2/feed/index", query, &data); err != nil {
		return nil, err
	}

	page := &domain.AppPage{Items: MapAppCards(data.Items), NextIdx: idx}
	if n := len(data.Items); n > 0 {
		page.NextIdx = data.Items[n-1].Idx
	}
	return page, nil
}

// GetPcRecommend returns page freshIdx of the web feed
func (c *Client) GetPcRecommend(ctx context.Context, freshIdx, pageSize int) ([]*domain.PcItem, error) {
	query := url.Values{}
	query.Set("fresh_type", "4")
	query.Set("ps", strconv.Itoa(pageSize))
	query.Set("fresh_idx", strconv.Itoa(freshIdx))
	query.Set("fresh_idx_1h", strconv.Itoa(freshIdx))
	query.Set("brush", strconv.Itoa(freshIdx))
	query.Set("feed_version", "V8")

	var data pcFeedData
	if err := c.get(ctx, c.cfg.WebURL, "/x/web-interface/index/top/feed/rcmd", query, &data); err != nil {
		return nil, err
	}
	return MapPcCards(data.Item), nil
}

// GetDynamicFeed returns the video dynamics page after q.Offset
func (c *Client) GetDynamicFeed(ctx context.Context, q domain.DynamicQuery) (*domain.DynamicPage, error) {
	query := url.Values{}
	query.Set("type", "video")
	query.Set("timezone_offset", "-480")
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("offset", q.Offset)
	if q.HostMid > 0 {
		query.Set("host_mid", strconv.FormatInt(q.HostMid, 10))
	}

	var data dynamicFeedData
	if err := c.get(ctx, c.cfg.WebURL, "/x/polymer/web-dynamic/v1/feed/all", query, &data); err != nil {
		return nil, err
	}
	return &domain.DynamicPage{
		Items:   MapDynamicCards(data.Items),
		Offset:  data.Offset,
		HasMore: data.HasMore,
	}, nil
}

// GetFollowGroupMids walks every page of a follow group
func (c *Client) GetFollowGroupMids(ctx context.Context, tagID int64) ([]int64, error) {
	var mids []int64
	for pn := 1; ; pn++ {
		query := url.Values{}
		query.Set("tagid", strconv.FormatInt(tagID, 10))
		query.Set("pn", strconv.Itoa(pn))
		query.Set("ps", strconv.Itoa(followGroupPage))

		var members []followGroupMember
		if err := c.get(ctx, c.cfg.WebURL, "/x/relation/tag", query, &members); err != nil {
			return nil, err
		}
		for _, m := range members {
			mids = append(mids, m.Mid)
		}
		if len(members) < followGroupPage {
			return mids, nil
		}
	}
}

// GetWatchlater returns the whole watch-later list
func (c *Client) GetWatchlater(ctx context.Context) ([]*domain.WatchlaterItem, error) {
	var data watchlaterData
	if err := c.get(ctx, c.cfg.WebURL, "/x/v2/history/toview", nil, &data); err != nil {
		return nil, err
	}
	return MapWatchlater(data.List), nil
}

// GetFavFolders returns the folders created by mid
func (c *Client) GetFavFolders(ctx context.Context, mid int64) ([]domain.FavFolder, error) {
	query := url.Values{}
	query.Set("up_mid", strconv.FormatInt(mid, 10))

	var data favFoldersData
	if err := c.get(ctx, c.cfg.WebURL, "/x/v3/fav/folder/created/list-all", query, &data); err != nil {
		return nil, err
	}
	return MapFavFolders(data.List), nil
}

// GetFavResources returns one page of a folder, newest favorite first
func (c *Client) GetFavResources(ctx context.Context, folderID int64, page, pageSize int) (*domain.FavPage, error) {
	if pageSize <= 0 {
		pageSize = favPageSize
	}
	query := url.Values{}
	query.Set("media_id", strconv.FormatInt(folderID, 10))
	query.Set("pn", strconv.Itoa(page))
	query.Set("ps", strconv.Itoa(pageSize))
	query.Set("order", "mtime")
	query.Set("platform", "web")

	var data favResourcesData
	if err := c.get(ctx, c.cfg.WebURL, "/x/v3/fav/resource/list", query, &data); err != nil {
		return nil, err
	}
	return &domain.FavPage{
		Items:   MapFavMedias(folderID, data.Info.Title, data.Medias),
		HasMore: data.HasMore,
	}, nil
}

// GetFollowingLive returns one page of followed rooms
func (c *Client) GetFollowingLive(ctx context.Context, page int) (*domain.LivePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(livePageSize))

	var data liveFollowingData
	if err := c.get(ctx, c.cfg.LiveURL, "/xlive/web-ucenter/user/following", query, &data); err != nil {
		return nil, err
	}
	return &domain.LivePage{Items: MapLiveRooms(data.List), TotalPage: data.TotalPage}, nil
}

// GetPopular returns one page of the popular list
func (c *Client) GetPopular(ctx context.Context, page, pageSize int) (*domain.HotPage, error) {
	query := url.Values{}
	query.Set("pn", strconv.Itoa(page))
	query.Set("ps", strconv.Itoa(pageSize))

	var data popularData
	if err := c.get(ctx, c.cfg.WebURL, "/x/web-interface/popular", query, &data); err != nil {
		return nil, err
	}
	return &domain.HotPage{Items: MapPopular(data.List), NoMore: data.NoMore}, nil
}

// GetWeeklySeries returns every weekly issue
func (c *Client) GetWeeklySeries(ctx context.Context) ([]domain.WeeklyEpisode, error) {
	var data weeklySeriesData
	if err := c.get(ctx, c.cfg.WebURL, "/x/web-interface/popular/series/list", nil, &data); err != nil {
		return nil, err
	}
	episodes := make([]domain.WeeklyEpisode, 0, len(data.List))
	for _, e := range data.List {
		episodes = append(episodes, domain.WeeklyEpisode{Number: e.Number, Subject: e.Subject, Name: e.Name})
	}
	return episodes, nil
}

// GetWeekly returns the videos of one weekly issue
func (c *Client) GetWeekly(ctx context.Context, number int) ([]*domain.HotItem, error) {
	query := url.Values{}
	query.Set("number", strconv.Itoa(number))

	var data weeklyData
	if err := c.get(ctx, c.cfg.WebURL, "/x/web-interface/popular/series/one", query, &data); err != nil {
		return nil, err
	}
	return MapWeekly(data.List), nil
}

// GetRanking returns the ranking of a region (0 = all)
func (c *Client) GetRanking(ctx context.Context, rid int) ([]*domain.HotItem, error) {
	query := url.Values{}
	query.Set("rid", strconv.Itoa(rid))
	query.Set("type", "all")

	var data rankingData
	if err := c.get(ctx, c.cfg.WebURL, "/x/web-interface/ranking/v2", query, &data); err != nil {
		return nil, err
	}
	return MapRanking(data.List), nil
}

// GetNav returns the logged-in account
func (c *Client) GetNav(ctx context.Context) (*domain.Account, error) {
	data, err := c.doRequest(ctx, c.cfg.WebURL, "/x/web-interface/nav", nil)
	if err != nil {
		var apiErr *domain.APIError
		// nav answers -101 with a valid body when logged out
		if errors.As(err, &apiErr) && apiErr.Code == domain.CodeNotLoggedIn {
			return &domain.Account{}, nil
		}
		return nil, err
	}
	var nav navData
	if err := json.Unmarshal(data, &nav); err != nil {
		return nil, fmt.Errorf("failed to decode nav: %w", err)
	}
	return &domain.Account{LoggedIn: nav.IsLogin, Mid: nav.Mid, Uname: nav.Uname}, nil
}
