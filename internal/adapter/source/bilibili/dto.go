package bilibili

import "encoding/json"

// Envelope wraps every API response
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Owner is the uploader block of archive-shaped videos
type Owner struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
	Face string `json:"face"`
}

// Stat counts of archive-shaped videos
type Stat struct {
	View    int64 `json:"view"`
	Like    int64 `json:"like"`
	Danmaku int64 `json:"danmaku"`
}

// Archive is the video shape shared by pc/popular/ranking/watchlater lists
type Archive struct {
	Aid      int64  `json:"aid"`
	ID       int64  `json:"id,omitempty"` // pc feed uses id instead of aid
	Bvid     string `json:"bvid"`
	Title    string `json:"title"`
	Pic      string `json:"pic"`
	Desc     string `json:"desc,omitempty"`
	Duration int64  `json:"duration"`
	Pubdate  int64  `json:"pubdate"`
	Owner    Owner  `json:"owner"`
	Stat     Stat   `json:"stat"`
}

// --- app feed ---

type appFeedData struct {
	Items []AppCard `json:"items"`
}

// AppCard is one card of the app feed
type AppCard struct {
	CardType       string `json:"card_type"`
	CardGoto       string `json:"card_goto"`
	Goto           string `json:"goto"`
	Param          string `json:"param"`
	Bvid           string `json:"bvid,omitempty"`
	Idx            int64  `json:"idx"`
	Title          string `json:"title"`
	Cover          string `json:"cover"`
	CoverLeftText1 string `json:"cover_left_text_1,omitempty"`
	CoverLeftText2 string `json:"cover_left_text_2,omitempty"`
	RcmdReason     string `json:"rcmd_reason,omitempty"`
	Args           struct {
		UpID   int64  `json:"up_id"`
		UpName string `json:"up_name"`
		Rname  string `json:"rname"`
		Aid    int64  `json:"aid"`
	} `json:"args"`
	PlayerArgs *struct {
		Aid      int64 `json:"aid"`
		Duration int64 `json:"duration"`
	} `json:"player_args,omitempty"`
}

// --- pc feed ---

type pcFeedData struct {
	Item []PcCard `json:"item"`
}

// PcCard is one card of the web recommendation feed
type PcCard struct {
	Archive
	Goto       string `json:"goto"`
	URI        string `json:"uri"`
	IsFollowed int    `json:"is_followed"`
	RcmdReason *struct {
		Content    string `json:"content"`
		ReasonType int    `json:"reason_type"`
	} `json:"rcmd_reason"`
}

// --- dynamic feed ---

type dynamicFeedData struct {
	HasMore bool          `json:"has_more"`
	Offset  string        `json:"offset"`
	Items   []DynamicCard `json:"items"`
}

// DynamicCard is one dynamic of the feed; only video dynamics carry an archive
type DynamicCard struct {
	IDStr   string `json:"id_str"`
	Type    string `json:"type"`
	Modules struct {
		ModuleAuthor struct {
			Mid       int64  `json:"mid"`
			Name      string `json:"name"`
			Face      string `json:"face"`
			PubTs     any    `json:"pub_ts"` // number or numeric string
			PubAction string `json:"pub_action"`
		} `json:"module_author"`
		ModuleDynamic struct {
			Major *struct {
				Type    string          `json:"type"`
				Archive *DynamicArchive `json:"archive,omitempty"`
			} `json:"major"`
		} `json:"module_dynamic"`
	} `json:"modules"`
}

// DynamicArchive is the video block of a dynamic; counts are display strings
type DynamicArchive struct {
	Aid          any    `json:"aid"` // string in this API
	Bvid         string `json:"bvid"`
	Title        string `json:"title"`
	Cover        string `json:"cover"`
	Desc         string `json:"desc"`
	DurationText string `json:"duration_text"`
	Stat         struct {
		Play    any `json:"play"`
		Danmaku any `json:"danmaku"`
	} `json:"stat"`
	Badge struct {
		Text string `json:"text"`
	} `json:"badge"`
}

// --- follow group ---

type followGroupMember struct {
	Mid   int64  `json:"mid"`
	Uname string `json:"uname"`
}

// --- watchlater ---

type watchlaterData struct {
	Count int              `json:"count"`
	List  []WatchlaterCard `json:"list"`
}

// WatchlaterCard is one entry of the watch-later list
type WatchlaterCard struct {
	Archive
	AddAt    int64 `json:"add_at"`
	Progress int64 `json:"progress"`
}

// --- fav ---

type favFoldersData struct {
	Count int         `json:"count"`
	List  []FavFolder `json:"list"`
}

// FavFolder is a folder of the created-folders list
type FavFolder struct {
	ID         int64  `json:"id"`
	Fid        int64  `json:"fid"`
	Mid        int64  `json:"mid"`
	Title      string `json:"title"`
	MediaCount int    `json:"media_count"`
}

type favResourcesData struct {
	Info struct {
		ID         int64  `json:"id"`
		Title      string `json:"title"`
		MediaCount int    `json:"media_count"`
	} `json:"info"`
	Medias  []FavMedia `json:"medias"`
	HasMore bool       `json:"has_more"`
}

// FavMedia is one resource of a folder
type FavMedia struct {
	ID       int64  `json:"id"`
	Type     int    `json:"type"`
	Title    string `json:"title"`
	Cover    string `json:"cover"`
	Intro    string `json:"intro"`
	Duration int64  `json:"duration"`
	Attr     int    `json:"attr"`
	Bvid     string `json:"bvid"`
	FavTime  int64  `json:"fav_time"`
	Pubtime  int64  `json:"pubtime"`
	Upper    Owner  `json:"upper"`
	CntInfo  struct {
		Collect int64 `json:"collect"`
		Play    int64 `json:"play"`
		Danmaku int64 `json:"danmaku"`
	} `json:"cnt_info"`
}

// --- live ---

type liveFollowingData struct {
	TotalPage int        `json:"totalPage"`
	List      []LiveRoom `json:"list"`
}

// LiveRoom is a followed streamer's room
type LiveRoom struct {
	RoomID         int64  `json:"roomid"`
	UID            int64  `json:"uid"`
	Uname          string `json:"uname"`
	Face           string `json:"face"`
	Title          string `json:"title"`
	RoomCover      string `json:"room_cover"`
	LiveStatus     int    `json:"live_status"`
	AreaNameV2     string `json:"area_name_v2"`
	TextSmall      string `json:"text_small"`
	RecordLiveTime int64  `json:"record_live_time"`
}

// --- hot ---

type popularData struct {
	List   []PopularCard `json:"list"`
	NoMore bool          `json:"no_more"`
}

// PopularCard is an entry of the popular list
type PopularCard struct {
	Archive
	RcmdReason struct {
		Content string `json:"content"`
	} `json:"rcmd_reason"`
}

type weeklySeriesData struct {
	List []struct {
		Number  int    `json:"number"`
		Subject string `json:"subject"`
		Name    string `json:"name"`
		Status  int    `json:"status"`
	} `json:"list"`
}

type weeklyData struct {
	List []WeeklyCard `json:"list"`
}

// WeeklyCard is an entry of a weekly issue; the reason is a plain string here
type WeeklyCard struct {
	Archive
	RcmdReason string `json:"rcmd_reason"`
}

type rankingData struct {
	List []Archive `json:"list"`
}

// --- nav ---

type navData struct {
	IsLogin bool   `json:"isLogin"`
	Mid     int64  `json:"mid"`
	Uname   string `json:"uname"`
}
