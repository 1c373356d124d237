package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/jukebox/internal/bridge"
	"github.com/desertthunder/jukebox/internal/catalog"
	"github.com/desertthunder/jukebox/internal/models"
	"github.com/desertthunder/jukebox/internal/player"
	"github.com/desertthunder/jukebox/internal/shared"
	"github.com/desertthunder/jukebox/internal/tasks"
)

const (
	seekStep   = 10.0
	volumeStep = 0.1
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrendingView ViewState = iota
	SongsView
	ArtistsView
	LikedView
)

var viewOrder = []ViewState{TrendingView, SongsView, ArtistsView, LikedView}

// String returns the tab label of the view.
func (v ViewState) String() string {
	switch v {
	case TrendingView:
		return "Trending"
	case SongsView:
		return "Songs"
	case ArtistsView:
		return "Artists"
	case LikedView:
		return "Liked"
	default:
		return "Unknown"
	}
}

// Publisher sends play requests to the bridge.
type Publisher interface {
	Publish(ctx context.Context, req bridge.PlayRequested) error
}

// Transport is the part of the player the TUI drives directly.
type Transport interface {
	TogglePlayPause()
	Next()
	Prev()
	Seek(seconds float64)
	SetVolume(v float64)
	Volume() float64
	Snapshot() player.Snapshot
}

// Saver persists the playback state.
type Saver interface {
	Save(ctx context.Context) error
}

// Likes reads and toggles the like set.
type Likes interface {
	Likes(ctx context.Context) (models.LikeSet, error)
	Toggle(ctx context.Context, id int64) (bool, error)
}

// Downloads saves tracks to disk.
type Downloads interface {
	Download(ctx context.Context, track models.Track, dir string) (string, error)
	BulkDownload(ctx context.Context, prog chan<- tasks.ProgressUpdate, tracks []models.Track, opts tasks.BulkDownloadOpts) (*tasks.BulkDownloadResult, error)
}

// Options wires a [Model]. Source is required when Library is nil.
type Options struct {
	Source      catalog.Source
	Library     *catalog.Library
	Bus         Publisher
	Transport   Transport
	Session     Saver
	Likes       Likes
	Downloads   Downloads
	DownloadDir string
	Bar         *Bar
	Prompts     *Confirmer
	Logger      *log.Logger
	// OnLoad is called with every library the model loads.
	OnLoad func(*catalog.Library)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *log.Logger

	view     ViewState
	library  *catalog.Library
	loadErr  error
	likes    models.LikeSet
	glyphs   *glyphTable
	query    string
	artistID int64
	pages    map[ViewState]int

	list        list.Model
	tracks      []models.Track
	pageInfo    catalog.Page[list.Item]
	filter      textinput.Model
	filtering   bool
	prompt      *prompt
	progressCh  <-chan tasks.ProgressUpdate
	bulkDone    <-chan bulkComplete
	progress    *tasks.ProgressUpdate
	bulkRunning bool
	status      string
	err         error
	width       int
	height      int
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if opts.Bar == nil {
		opts.Bar = NewBar()
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "title or artist"

	return &Model{
		ctx:     ctx,
		opts:    opts,
		logger:  logger,
		view:    TrendingView,
		library: opts.Library,
		likes:   models.NewLikeSet(),
		glyphs:  newGlyphTable(),
		pages:   map[ViewState]int{},
		list:    newList(nil),
		filter:  filter,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// LikeView returns the glyph table the like sync should update.
func (m *Model) LikeView() tasks.LikeView { return m.glyphs }

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Init loads the catalog and starts listening for player and prompt updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), m.waitForDisplay(), m.waitForGlyphs(), m.waitForPrompt())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, max(msg.Height-10, 4))
		return m, nil

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.handlePromptKeys(msg)
		}
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogLoaded:
		data := msg.data.(catalogLoaded)
		if data.err != nil {
			m.logger.Error("failed to load catalog", "error", data.err)
			m.loadErr = data.err
			return m, nil
		}
		m.loadErr = nil
		m.library = data.library
		if m.opts.OnLoad != nil {
			m.opts.OnLoad(data.library)
		}
		m.likes = data.likes
		m.glyphs.reset(data.likes)
		m.refresh()
		return m, nil

	case MsgDisplayChanged:
		m.refresh()
		return m, m.waitForDisplay()

	case MsgPromptRequested:
		m.prompt = msg.data.(*prompt)
		return m, nil

	case MsgGlyphsChanged:
		m.likes = m.glyphs.likes()
		m.refresh()
		return m, m.waitForGlyphs()

	case MsgLikeToggled:
		data := msg.data.(likeToggled)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.glyphs.set(data.id, tasks.GlyphFor(data.liked))
		if data.liked {
			m.likes.Add(data.id)
		} else {
			m.likes.Remove(data.id)
		}
		m.refresh()
		return m, nil

	case MsgDownloaded:
		data := msg.data.(downloaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Saved %s", data.path)
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = &update
		return m, m.waitForProgress()

	case MsgBulkComplete:
		data := msg.data.(bulkComplete)
		m.bulkRunning = false
		m.progress = nil
		m.progressCh = nil
		m.bulkDone = nil
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Downloaded %d/%d tracks to %s", data.result.Successful, data.result.TotalTracks, data.result.OutputDirectory)
		return m, nil

	case MsgStatus:
		data := msg.data.(status)
		m.err = data.err
		if data.text != "" {
			m.status = data.text
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loadErr != nil {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.retry):
			m.loadErr = nil
			return m, m.loadCatalog()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.nextView):
		return m, m.switchView(m.offsetView(1))
	case key.Matches(msg, m.keys.prevView):
		return m, m.switchView(m.offsetView(-1))
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '4':
		return m, m.switchView(viewOrder[msg.Runes[0]-'1'])
	case key.Matches(msg, m.keys.back):
		if m.artistID != 0 || m.query != "" {
			m.artistID = 0
			m.query = ""
			m.filter.SetValue("")
			m.pages[m.view] = 1
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.nextPage):
		m.turnPage(1)
		return m, nil
	case key.Matches(msg, m.keys.prevPage):
		m.turnPage(-1)
		return m, nil
	case key.Matches(msg, m.keys.filter):
		if m.view == TrendingView {
			return m, nil
		}
		m.filtering = true
		m.filter.SetValue(m.query)
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.enter):
		return m, m.activate()
	case key.Matches(msg, m.keys.playAll):
		return m, m.playArtist()
	case key.Matches(msg, m.keys.toggle):
		m.opts.Transport.TogglePlayPause()
		return m, nil
	case key.Matches(msg, m.keys.nextTr):
		m.opts.Transport.Next()
		return m, nil
	case key.Matches(msg, m.keys.prevTr):
		m.opts.Transport.Prev()
		return m, nil
	case key.Matches(msg, m.keys.forward):
		m.seekBy(seekStep)
		return m, nil
	case key.Matches(msg, m.keys.rewind):
		m.seekBy(-seekStep)
		return m, nil
	case key.Matches(msg, m.keys.volUp):
		m.opts.Transport.SetVolume(m.opts.Transport.Volume() + volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.volDown):
		m.opts.Transport.SetVolume(m.opts.Transport.Volume() - volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.like):
		if track, ok := m.selectedTrack(); ok {
			return m, m.toggleLike(track.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.download):
		if track, ok := m.selectedTrack(); ok {
			return m, m.download(track)
		}
		return m, nil
	case key.Matches(msg, m.keys.bulk):
		if m.view == LikedView && !m.bulkRunning && len(m.tracks) > 0 {
			return m, m.startBulkDownload(m.tracks)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.query = strings.TrimSpace(m.filter.Value())
		m.pages[m.view] = 1
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, m.quit()
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.prompt.reply(true)
	case key.Matches(msg, m.keys.no), msg.Type == tea.KeyCtrlC:
		m.prompt.reply(false)
	default:
		return m, nil
	}
	m.prompt = nil
	return m, m.waitForPrompt()
}

func (m *Model) offsetView(delta int) ViewState {
	n := len(viewOrder)
	return viewOrder[((int(m.view)+delta)%n+n)%n]
}

// switchView changes the view and saves the playback state, like leaving a page.
func (m *Model) switchView(v ViewState) tea.Cmd {
	if v == m.view {
		return nil
	}
	m.view = v
	m.query = ""
	m.filter.SetValue("")
	if v != SongsView {
		m.artistID = 0
	}
	m.list.Select(0)
	m.refresh()
	return m.save()
}

func (m *Model) turnPage(delta int) {
	page := m.pages[m.view]
	if page == 0 {
		page = 1
	}
	m.pages[m.view] = page + delta
	m.refresh()
	m.list.Select(0)
}

// activate plays the selected track, or opens the selected artist's discography.
func (m *Model) activate() tea.Cmd {
	switch item := m.list.SelectedItem().(type) {
	case trackItem:
		return m.requestPlay(item.track.ID, models.NewPlaylist(m.tracks))
	case artistItem:
		m.view = SongsView
		m.artistID = item.artist.ID
		m.query = ""
		m.pages[SongsView] = 1
		m.list.Select(0)
		m.refresh()
		return m.save()
	}
	return nil
}

// playArtist plays the discography of the selected or filtered artist from its first track.
func (m *Model) playArtist() tea.Cmd {
	if m.library == nil {
		return nil
	}

	var id int64
	switch item := m.list.SelectedItem().(type) {
	case artistItem:
		id = item.artist.ID
	default:
		if m.view != SongsView || m.artistID == 0 {
			return nil
		}
		id = m.artistID
	}

	tracks := m.library.ByArtist(id)
	if len(tracks) == 0 {
		m.err = nil
		m.status = "This artist has no songs to play yet."
		return nil
	}
	m.status = ""
	return m.requestPlay(tracks[0].ID, models.NewPlaylist(tracks))
}

func (m *Model) seekBy(delta float64) {
	snap := m.opts.Transport.Snapshot()
	if snap.NowPlaying == nil {
		return
	}
	m.opts.Transport.Seek(snap.Elapsed + delta)
}

func (m *Model) selectedTrack() (models.Track, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
	if !ok {
		return models.Track{}, false
	}
	return item.track, true
}

// refresh rebuilds the list for the current view, filter and page.
func (m *Model) refresh() {
	if m.library == nil {
		return
	}

	current := int64(0)
	if np, ok := m.opts.Bar.Current(); ok {
		current = np.TrackID
	}

	var items []list.Item
	per := catalog.SongsPerPage
	switch m.view {
	case TrendingView:
		m.tracks = m.library.Trending(catalog.TrendingSize)
		per = catalog.TrendingSize
	case SongsView:
		m.tracks = m.library.Filter(catalog.Filter{Query: m.query, ArtistID: m.artistID})
	case LikedView:
		m.tracks = m.filterTracks(m.library.Liked(m.likes))
	case ArtistsView:
		m.tracks = nil
		per = catalog.ArtistsPerPage
		for _, a := range m.library.FilterArtists(m.query, "") {
			items = append(items, artistItem{artist: a, stats: m.library.ArtistStats(a.ID)})
		}
	}

	if m.view != ArtistsView {
		items = make([]list.Item, len(m.tracks))
		for i, t := range m.tracks {
			items[i] = trackItem{
				track:   t,
				artist:  m.library.ArtistName(t.ArtistID),
				glyph:   m.glyphs.glyph(t.ID),
				playing: t.ID == current,
			}
		}
	}

	m.pageInfo = catalog.Paginate(items, m.pages[m.view], per)
	m.pages[m.view] = m.pageInfo.Page
	index := m.list.Index()
	m.list.SetItems(m.pageInfo.Items)
	if index < len(m.pageInfo.Items) {
		m.list.Select(index)
	}
}

func (m *Model) filterTracks(tracks []models.Track) []models.Track {
	q := strings.ToLower(m.query)
	if q == "" {
		return tracks
	}
	var out []models.Track
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(m.library.ArtistName(t.ArtistID)), q) {
			out = append(out, t)
		}
	}
	return out
}

func (m *Model) loadCatalog() tea.Cmd {
	if m.library != nil {
		library := m.library
		return func() tea.Msg {
			likes, err := m.readLikes()
			return catalogLoadedMsg(library, likes, err)
		}
	}
	return func() tea.Msg {
		library, err := catalog.Load(m.ctx, m.opts.Source)
		if err != nil {
			return catalogLoadedMsg(nil, models.LikeSet{}, err)
		}
		likes, err := m.readLikes()
		return catalogLoadedMsg(library, likes, err)
	}
}

func (m *Model) readLikes() (models.LikeSet, error) {
	if m.opts.Likes == nil {
		return models.NewLikeSet(), nil
	}
	return m.opts.Likes.Likes(m.ctx)
}

func (m *Model) requestPlay(id int64, playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		req := bridge.PlayRequested{TrackID: id, Playlist: playlist}
		if err := m.opts.Bus.Publish(m.ctx, req); err != nil {
			return statusMsg("", fmt.Errorf("could not start playback: %w", err))
		}
		return nil
	}
}

func (m *Model) toggleLike(id int64) tea.Cmd {
	if m.opts.Likes == nil {
		return nil
	}
	return func() tea.Msg {
		liked, err := m.opts.Likes.Toggle(m.ctx, id)
		return likeToggledMsg(id, liked, err)
	}
}

func (m *Model) download(track models.Track) tea.Cmd {
	if m.opts.Downloads == nil {
		return nil
	}
	m.status = fmt.Sprintf("Downloading %s...", track.Title)
	return func() tea.Msg {
		path, err := m.opts.Downloads.Download(m.ctx, track, m.opts.DownloadDir)
		return downloadedMsg(track, path, err)
	}
}

func (m *Model) startBulkDownload(tracks []models.Track) tea.Cmd {
	if m.opts.Downloads == nil {
		return nil
	}
	m.bulkRunning = true
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan bulkComplete, 1)
	m.progressCh = progress
	m.bulkDone = done

	go func() {
		result, err := m.opts.Downloads.BulkDownload(m.ctx, progress, tracks, tasks.BulkDownloadOpts{OutputDir: m.opts.DownloadDir})
		done <- bulkComplete{result, err}
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress relays bulk download updates until the channel closes, then reports completion.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressCh, m.bulkDone
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			res := <-done
			return bulkCompleteMsg(res.result, res.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) waitForDisplay() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.opts.Bar.Changed():
			return displayChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

// waitForGlyphs reports like toggles as soon as they are applied locally.
func (m *Model) waitForGlyphs() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.glyphs.changed:
			return glyphsChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForPrompt() tea.Cmd {
	if m.opts.Prompts == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case p := <-m.opts.Prompts.requests:
			return promptRequestedMsg(p)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) save() tea.Cmd {
	if m.opts.Session == nil {
		return nil
	}
	return func() tea.Msg {
		if err := m.opts.Session.Save(m.ctx); err != nil {
			m.logger.Warn("failed to save playback state", "error", err)
		}
		return nil
	}
}

// quit saves the playback state before leaving.
func (m *Model) quit() tea.Cmd {
	if m.prompt != nil {
		m.prompt.reply(false)
	}
	return tea.Sequence(m.save(), tea.Quit)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch {
	case m.loadErr != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not load the catalog: %v", m.loadErr)))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit}))
		return b.String()
	case m.library == nil:
		b.WriteString(styles.help.Render("Loading catalog..."))
		return b.String()
	}

	if heading := m.renderHeading(); heading != "" {
		b.WriteString(heading)
		b.WriteString("\n")
	}

	if m.prompt != nil {
		b.WriteString(m.renderPrompt())
	} else if len(m.pageInfo.Items) == 0 {
		b.WriteString(styles.help.Render(m.emptyText()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
		b.WriteString(m.renderFooter())
	}

	if m.filtering {
		b.WriteString("\n")
		b.WriteString(m.filter.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if bar := m.opts.Bar.View(m.width); bar != "" {
		b.WriteString("\n")
		b.WriteString(bar)
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs[i] = styles.active.Render(label)
		} else {
			tabs[i] = styles.tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderHeading() string {
	var parts []string
	if m.artistID != 0 {
		parts = append(parts, "Artist: "+m.library.ArtistName(m.artistID))
	}
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("Filter: %q", m.query))
	}
	if len(parts) == 0 {
		return ""
	}
	return styles.warn.Render(strings.Join(parts, " • ") + "  (esc to clear)")
}

func (m *Model) emptyText() string {
	switch {
	case m.view == LikedView && m.query == "":
		return "No liked tracks yet. Press f on a track to like it."
	case m.view == ArtistsView:
		return "No artists found."
	default:
		return "No tracks found."
	}
}

func (m *Model) renderFooter() string {
	p := m.pageInfo
	if p.Pages <= 1 {
		return styles.help.Render(fmt.Sprintf("%d items", p.Total))
	}
	return styles.help.Render(fmt.Sprintf("Page %d of %d • %d items", p.Page, p.Pages, p.Total))
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render(m.prompt.title)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s\n", title, m.prompt.message, helpView)
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.progress != nil {
		p := m.progress
		return styles.warn.Render(fmt.Sprintf("[%s %d/%d] %s", p.Phase, p.Step, p.Total, p.Message))
	}
	if m.status != "" {
		return styles.ok.Render(m.status)
	}
	return ""
}

// glyphTable tracks like glyphs by track id. It is the [tasks.LikeView] of the TUI.
type glyphTable struct {
	mu      sync.Mutex
	glyphs  map[int64]tasks.LikeGlyph
	changed chan struct{}
}

func newGlyphTable() *glyphTable {
	return &glyphTable{glyphs: map[int64]tasks.LikeGlyph{}, changed: make(chan struct{}, 1)}
}

// SetLiked records the glyph for id and wakes the model so the list shows it right away.
func (g *glyphTable) SetLiked(id int64, glyph tasks.LikeGlyph) {
	g.set(id, glyph)
	select {
	case g.changed <- struct{}{}:
	default:
	}
}

func (g *glyphTable) set(id int64, glyph tasks.LikeGlyph) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.glyphs[id] = glyph
}

// likes returns the ids currently shown as liked.
func (g *glyphTable) likes() models.LikeSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := models.NewLikeSet()
	for id, glyph := range g.glyphs {
		if glyph == tasks.GlyphLiked {
			set.Add(id)
		}
	}
	return set
}

func (g *glyphTable) reset(likes models.LikeSet) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.glyphs = make(map[int64]tasks.LikeGlyph, likes.Len())
	for _, id := range likes.IDs() {
		g.glyphs[id] = tasks.GlyphLiked
	}
}

func (g *glyphTable) glyph(id int64) tasks.LikeGlyph {
	g.mu.Lock()
	defer g.mu.Unlock()
	if glyph, ok := g.glyphs[id]; ok {
		return glyph
	}
	return tasks.GlyphNotLiked
}
