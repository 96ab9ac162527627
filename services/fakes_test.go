package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"projectdrive/models"
	"projectdrive/remotedrive"
)

// fakeDrive is an in-memory remotedrive.Client. Items live in a flat map
// keyed by id, children are tracked per parent in insertion order, and
// paths follow the same /segment/segment shape the provider reports.
// Errors can be injected per method, optionally narrowed to one argument.
type fakeDrive struct {
	mu        sync.Mutex
	items     map[string]*remotedrive.Item
	children  map[string][]string
	content   map[string][]byte
	errs      map[string]error
	onceErrs  map[string]error
	errCounts map[string]int
	calls     []string
	seq       int
}

func newFakeDrive() *fakeDrive {
	fd := &fakeDrive{
		items:     make(map[string]*remotedrive.Item),
		children:  make(map[string][]string),
		content:   make(map[string][]byte),
		errs:      make(map[string]error),
		onceErrs:  make(map[string]error),
		errCounts: make(map[string]int),
	}
	fd.items[remotedrive.RootItemID] = &remotedrive.Item{
		ID:       remotedrive.RootItemID,
		Name:     "root",
		Path:     "/",
		IsFolder: true,
	}
	return fd
}

// addFolder creates a folder under parentID for test setup, bypassing the
// conflict check and error injection.
func (fd *fakeDrive) addFolder(parentID, name string) *remotedrive.Item {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.insert(parentID, name, true, 0)
}

// addFile creates a file under parentID with the given content.
func (fd *fakeDrive) addFile(parentID, name string, content []byte) *remotedrive.Item {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	item := fd.insert(parentID, name, false, int64(len(content)))
	fd.content[item.ID] = content
	return item
}

// failOn makes calls to method fail with err. A non-empty key narrows the
// failure to calls whose main argument (id, path, name or query) matches.
func (fd *fakeDrive) failOn(method, key string, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if key == "" {
		fd.errs[method] = err
		return
	}
	fd.errs[method+" "+key] = err
}

// failTimes injects err for the next times matching calls, then clears.
func (fd *fakeDrive) failTimes(method, key string, err error, times int) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	probe := method
	if key != "" {
		probe = method + " " + key
	}
	fd.onceErrs[probe] = err
	fd.errCounts[probe] = times
}

// callsTo counts how many calls the named method received.
func (fd *fakeDrive) callsTo(method string) int {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	count := 0
	for _, call := range fd.calls {
		if call == method || strings.HasPrefix(call, method+" ") {
			count++
		}
	}
	return count
}

func (fd *fakeDrive) item(id string) *remotedrive.Item {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	item, ok := fd.items[id]
	if !ok {
		return nil
	}
	clone := *item
	return &clone
}

func (fd *fakeDrive) insert(parentID, name string, isFolder bool, size int64) *remotedrive.Item {
	parent := fd.items[parentID]
	fd.seq++
	item := &remotedrive.Item{
		ID:       fmt.Sprintf("item-%d", fd.seq),
		Name:     name,
		Path:     joinFakePath(parent.Path, name),
		ParentID: parentID,
		Size:     size,
		IsFolder: isFolder,
		WebURL:   fmt.Sprintf("https://drive.example.com/items/item-%d", fd.seq),
		ETag:     fmt.Sprintf("etag-%d", fd.seq),
	}
	if !isFolder {
		item.MimeType = "application/octet-stream"
		item.DownloadURL = fmt.Sprintf("https://downloads.example.com/item-%d", fd.seq)
	}
	fd.items[item.ID] = item
	fd.children[parentID] = append(fd.children[parentID], item.ID)
	return item
}

func (fd *fakeDrive) record(method, key string) error {
	fd.calls = append(fd.calls, method+" "+key)
	for _, probe := range []string{method + " " + key, method} {
		if err, ok := fd.onceErrs[probe]; ok {
			fd.errCounts[probe]--
			if fd.errCounts[probe] <= 0 {
				delete(fd.onceErrs, probe)
				delete(fd.errCounts, probe)
			}
			return err
		}
		if err, ok := fd.errs[probe]; ok {
			return err
		}
	}
	return nil
}

func (fd *fakeDrive) GetItem(ctx context.Context, itemID string) (*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("GetItem", itemID); err != nil {
		return nil, err
	}
	item, ok := fd.items[itemID]
	if !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", itemID))
	}
	clone := *item
	return &clone, nil
}

func (fd *fakeDrive) GetItemByPath(ctx context.Context, path string) (*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("GetItemByPath", path); err != nil {
		return nil, err
	}
	for _, item := range fd.items {
		if strings.EqualFold(item.Path, path) {
			clone := *item
			return &clone, nil
		}
	}
	return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("no item at %s", path))
}

func (fd *fakeDrive) ListChildren(ctx context.Context, folderID string) ([]*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("ListChildren", folderID); err != nil {
		return nil, err
	}
	if _, ok := fd.items[folderID]; !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", folderID))
	}
	children := make([]*remotedrive.Item, 0, len(fd.children[folderID]))
	for _, id := range fd.children[folderID] {
		clone := *fd.items[id]
		children = append(children, &clone)
	}
	return children, nil
}

func (fd *fakeDrive) CreateFolder(ctx context.Context, parentID, name string) (*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("CreateFolder", name); err != nil {
		return nil, err
	}
	if _, ok := fd.items[parentID]; !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", parentID))
	}
	for _, id := range fd.children[parentID] {
		if strings.EqualFold(fd.items[id].Name, name) {
			return nil, models.NewRemoteError(models.KindNameConflict, "nameAlreadyExists",
				fmt.Sprintf("an item named %s already exists", name))
		}
	}
	clone := *fd.insert(parentID, name, true, 0)
	return &clone, nil
}

func (fd *fakeDrive) UpdateItem(ctx context.Context, itemID string, patch remotedrive.ItemPatch) (*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("UpdateItem", itemID); err != nil {
		return nil, err
	}
	item, ok := fd.items[itemID]
	if !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", itemID))
	}
	if patch.ParentID != "" && patch.ParentID != item.ParentID {
		newParent, ok := fd.items[patch.ParentID]
		if !ok || !newParent.IsFolder {
			return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", patch.ParentID))
		}
		siblings := fd.children[item.ParentID]
		for i, id := range siblings {
			if id == itemID {
				fd.children[item.ParentID] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
		fd.children[patch.ParentID] = append(fd.children[patch.ParentID], itemID)
		item.ParentID = patch.ParentID
	}
	if patch.Name != "" {
		item.Name = patch.Name
	}
	item.Path = joinFakePath(fd.items[item.ParentID].Path, item.Name)
	clone := *item
	return &clone, nil
}

func (fd *fakeDrive) DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("DownloadContent", itemID); err != nil {
		return nil, err
	}
	if _, ok := fd.items[itemID]; !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", itemID))
	}
	return io.NopCloser(bytes.NewReader(fd.content[itemID])), nil
}

func (fd *fakeDrive) UploadContent(ctx context.Context, itemID string, content io.Reader, size int64) (*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("UploadContent", itemID); err != nil {
		return nil, err
	}
	item, ok := fd.items[itemID]
	if !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("item %s does not exist", itemID))
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	fd.content[itemID] = data
	item.Size = int64(len(data))
	clone := *item
	return &clone, nil
}

func (fd *fakeDrive) Search(ctx context.Context, query string, limit int) ([]*remotedrive.Item, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	if err := fd.record("Search", query); err != nil {
		return nil, err
	}
	matches := []*remotedrive.Item{}
	for _, id := range fd.orderedIDs() {
		item := fd.items[id]
		if strings.Contains(strings.ToLower(item.Name), strings.ToLower(query)) {
			clone := *item
			matches = append(matches, &clone)
			if limit > 0 && len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

func (fd *fakeDrive) Ping(ctx context.Context) error {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.record("Ping", "")
}

// orderedIDs walks the tree in creation order so search results are
// deterministic.
func (fd *fakeDrive) orderedIDs() []string {
	ids := []string{}
	queue := []string{remotedrive.RootItemID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ids = append(ids, id)
		queue = append(queue, fd.children[id]...)
	}
	return ids
}

func joinFakePath(parentPath, name string) string {
	if parentPath == "/" || parentPath == "" {
		return "/" + name
	}
	return parentPath + "/" + name
}

type fakeMappingStore struct {
	mappings  map[string]*models.ProjectFolderMapping
	getErr    error
	createErr error
	orphanErr error
	created   []string
}

func newFakeMappingStore() *fakeMappingStore {
	return &fakeMappingStore{mappings: make(map[string]*models.ProjectFolderMapping)}
}

func (s *fakeMappingStore) GetMapping(projectCode string) (*models.ProjectFolderMapping, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	mapping, ok := s.mappings[projectCode]
	if !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("no folder mapping for project %s", projectCode))
	}
	clone := *mapping
	return &clone, nil
}

func (s *fakeMappingStore) GetAllMappings() ([]models.ProjectFolderMapping, error) {
	all := make([]models.ProjectFolderMapping, 0, len(s.mappings))
	for _, mapping := range s.mappings {
		all = append(all, *mapping)
	}
	return all, nil
}

func (s *fakeMappingStore) CreateMapping(mapping *models.ProjectFolderMapping) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.mappings[mapping.ProjectCode]; exists {
		return models.NewDomainError(models.KindDuplicateMapping,
			fmt.Sprintf("project %s already has a folder mapping", mapping.ProjectCode))
	}
	clone := *mapping
	s.mappings[mapping.ProjectCode] = &clone
	s.created = append(s.created, mapping.ProjectCode)
	return nil
}

func (s *fakeMappingStore) DeleteMapping(projectCode string) (bool, error) {
	if _, ok := s.mappings[projectCode]; !ok {
		return false, nil
	}
	delete(s.mappings, projectCode)
	return true, nil
}

func (s *fakeMappingStore) FindOrphanProjects(allProjects []models.Project) ([]models.Project, error) {
	if s.orphanErr != nil {
		return nil, s.orphanErr
	}
	orphans := []models.Project{}
	for _, project := range allProjects {
		if _, mapped := s.mappings[project.Code]; !mapped {
			orphans = append(orphans, project)
		}
	}
	return orphans, nil
}

type fakeFileIndex struct {
	records   map[string]*models.RemoteFileRecord
	batches   [][]*models.RemoteFileRecord
	upserts   int
	upsertErr error
	batchErr  error
}

func newFakeFileIndex() *fakeFileIndex {
	return &fakeFileIndex{records: make(map[string]*models.RemoteFileRecord)}
}

func (s *fakeFileIndex) UpsertRecord(record *models.RemoteFileRecord) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	clone := *record
	s.records[record.DriveItemID] = &clone
	s.upserts++
	return nil
}

func (s *fakeFileIndex) UpsertRecords(records []*models.RemoteFileRecord) (int, error) {
	if s.batchErr != nil {
		return 0, s.batchErr
	}
	batch := make([]*models.RemoteFileRecord, 0, len(records))
	for _, record := range records {
		clone := *record
		s.records[record.DriveItemID] = &clone
		batch = append(batch, &clone)
	}
	s.batches = append(s.batches, batch)
	return len(records), nil
}

func (s *fakeFileIndex) GetByItemID(driveItemID string) (*models.RemoteFileRecord, error) {
	record, ok := s.records[driveItemID]
	if !ok {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("file %s is not indexed", driveItemID))
	}
	clone := *record
	return &clone, nil
}

type fakeProjectStore struct {
	projects []models.Project
	err      error
}

func (s *fakeProjectStore) GetProjectByCode(code string) (*models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, project := range s.projects {
		if project.Code == code {
			clone := project
			return &clone, nil
		}
	}
	return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("project %s is not registered", code))
}

func (s *fakeProjectStore) GetActiveProjects() ([]models.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	active := []models.Project{}
	for _, project := range s.projects {
		if project.IsActive {
			active = append(active, project)
		}
	}
	return active, nil
}

type fakeSettings struct {
	rootPath string
}

func (s *fakeSettings) GetRootFolder() (*models.RootFolderConfiguration, error) {
	return &models.RootFolderConfiguration{FolderPath: s.rootPath}, nil
}

func (s *fakeSettings) RootFolderPath() string {
	if s.rootPath == "" {
		return DefaultRootFolderPath
	}
	return s.rootPath
}

type provisionCall struct {
	projectCode string
	templateID  string
	description string
}

type fakeProvisioner struct {
	results map[string]*models.ProvisionResult
	errs    map[string]error
	calls   []provisionCall
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		results: make(map[string]*models.ProvisionResult),
		errs:    make(map[string]error),
	}
}

func (p *fakeProvisioner) ProvisionProject(projectCode, templateID, description string) (*models.ProvisionResult, error) {
	p.calls = append(p.calls, provisionCall{projectCode, templateID, description})
	if err, ok := p.errs[projectCode]; ok {
		return nil, err
	}
	if result, ok := p.results[projectCode]; ok {
		return result, nil
	}
	return &models.ProvisionResult{
		ProjectCode: projectCode,
		Template:    templateID,
		Folder: models.ProvisionedFolder{
			FolderID:   "prov-" + projectCode,
			FolderPath: "/Projects/" + projectCode,
		},
		Subfolders: []string{},
	}, nil
}
