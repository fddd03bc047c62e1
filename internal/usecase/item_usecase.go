package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecapi/internal/domain/model"
	repo "ecapi/internal/repository"

	"github.com/sirupsen/logrus"
)

// 画像データ（base64）が壊れている、拡張子が不正など
var ErrInvalidImage = errors.New("invalid image")

// 画像の保存先。戻り値は公開URL（/storage/items/...）
type ImageStorage interface {
	SaveForItem(ctx context.Context, key int64, base64Data string, extension string) (string, error)
	Remove(ctx context.Context, url string) error
}

const (
	ItemEventCreated = "item.created"
	ItemEventUpdated = "item.updated"
	ItemEventDeleted = "item.deleted"
)

type ItemEvent struct {
	Type       string    `json:"type"`
	ItemID     int64     `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	Price      int64     `json:"price,omitempty"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// 商品の変更通知。失敗してもリクエストは失敗させない。
type ItemEventPublisher interface {
	Publish(ctx context.Context, ev ItemEvent) error
}

type ItemUsecase struct {
	itemRepo  repo.ItemRepository
	auditRepo repo.AuditLogRepository
	images    ImageStorage
	events    ItemEventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// DI
func NewItemUsecase(
	itemRepo repo.ItemRepository,
	auditRepo repo.AuditLogRepository,
	images ImageStorage,
	events ItemEventPublisher,
	log logrus.FieldLogger,
) *ItemUsecase {
	return &ItemUsecase{
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
		images:    images,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

// POST /api/items の入力
type CreateItemInput struct {
	Name      string
	Price     int64
	Content   string
	Base64    string
	Extension string
}

// PUT /api/items/:id の入力。nilは変更しない
type UpdateItemInput struct {
	Name      *string
	Content   *string
	Price     *int64
	Base64    *string
	Extension *string
}

func (u *ItemUsecase) List(ctx context.Context, q ItemQuery) (ItemPage, error) {
	items, total, err := u.itemRepo.FindAllWithFilters(ctx, q.toRepo())
	if err != nil {
		return ItemPage{}, dbError(u.log, "list items", err)
	}
	return BuildItemPage(q, items, total), nil
}

func (u *ItemUsecase) Get(ctx context.Context, id int64) (model.Item, error) {
	if id <= 0 {
		return model.Item{}, NewBadRequest("invalid item id")
	}

	it, err := u.itemRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, NewNotFound("item not found")
	}
	if err != nil {
		return model.Item{}, dbError(u.log, "find item", err)
	}
	return it, nil
}

// 画像を保存してから商品を作る。
// 実IDはINSERTまで決まらないので、画像のキーには現在時刻（ミリ秒）を使う。
func (u *ItemUsecase) Create(ctx context.Context, actorID int64, in CreateItemInput) (model.Item, error) {
	if actorID <= 0 {
		return model.Item{}, NewUnauthorized("unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Item{}, NewBadRequest("name required")
	}
	if in.Price < 0 {
		return model.Item{}, NewBadRequest("price must be >= 0")
	}

	imageURL, err := u.saveImage(ctx, u.now().UnixMilli(), in.Base64, in.Extension)
	if err != nil {
		return model.Item{}, err
	}

	it, err := u.itemRepo.Create(ctx, model.Item{
		Name:    strings.TrimSpace(in.Name),
		Content: in.Content,
		Price:   in.Price,
		Image:   imageURL,
	})
	if err != nil {
		// レコードが作れなかった画像は残さない
		u.removeImage(ctx, imageURL)
		return model.Item{}, dbError(u.log, "create item", err)
	}

	u.record(ctx, actorID, model.AuditActionCreateItem, it.ID, nil, &it)
	u.publish(ctx, ItemEventCreated, actorID, it)
	return it, nil
}

// 渡されたフィールドだけ更新する。
// 画像はbase64とextensionが両方そろった時だけ差し替える。
func (u *ItemUsecase) Update(ctx context.Context, actorID int64, id int64, in UpdateItemInput) (model.Item, error) {
	if actorID <= 0 {
		return model.Item{}, NewUnauthorized("unauthorized")
	}
	if id <= 0 {
		return model.Item{}, NewBadRequest("invalid item id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.Item{}, NewBadRequest("name required")
	}
	if in.Price != nil && *in.Price < 0 {
		return model.Item{}, NewBadRequest("price must be >= 0")
	}

	before, err := u.itemRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, NewNotFound("item not found")
	}
	if err != nil {
		return model.Item{}, dbError(u.log, "find item", err)
	}

	patch := repo.ItemPatch{
		Content: in.Content,
		Price:   in.Price,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		patch.Name = &name
	}
	if hasValue(in.Base64) && hasValue(in.Extension) {
		imageURL, err := u.saveImage(ctx, id, *in.Base64, *in.Extension)
		if err != nil {
			return model.Item{}, err
		}
		patch.Image = &imageURL
	}

	after, err := u.itemRepo.Update(ctx, id, patch)
	if err != nil && patch.Image != nil {
		u.removeImage(ctx, *patch.Image)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Item{}, NewNotFound("item not found")
	}
	if err != nil {
		return model.Item{}, dbError(u.log, "update item", err)
	}

	// 差し替えた古い画像は消す
	if patch.Image != nil && before.Image != "" && before.Image != *patch.Image {
		u.removeImage(ctx, before.Image)
	}

	u.record(ctx, actorID, model.AuditActionUpdateItem, id, &before, &after)
	u.publish(ctx, ItemEventUpdated, actorID, after)
	return after, nil
}

// カートから参照されている商品は400
func (u *ItemUsecase) Delete(ctx context.Context, actorID int64, id int64) error {
	if actorID <= 0 {
		return NewUnauthorized("unauthorized")
	}
	if id <= 0 {
		return NewBadRequest("invalid item id")
	}

	before, err := u.itemRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewNotFound("item not found")
	}
	if err != nil {
		return dbError(u.log, "find item", err)
	}

	err = u.itemRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repo.ErrReferenced):
		u.log.WithError(err).WithField("item_id", id).Info("delete refused: item is referenced")
		return NewBadRequest("item is referenced by other data (e.g. carts) and cannot be deleted")
	case errors.Is(err, repo.ErrNotFound):
		return NewNotFound("item not found")
	case err != nil:
		return dbError(u.log, "delete item", err)
	}

	if before.Image != "" {
		u.removeImage(ctx, before.Image)
	}

	u.record(ctx, actorID, model.AuditActionDeleteItem, id, &before, nil)
	u.publish(ctx, ItemEventDeleted, actorID, before)
	return nil
}

func (u *ItemUsecase) saveImage(ctx context.Context, key int64, data string, ext string) (string, error) {
	url, err := u.images.SaveForItem(ctx, key, data, ext)
	if errors.Is(err, ErrInvalidImage) {
		return "", NewBadRequest("invalid image")
	}
	if err != nil {
		u.log.WithError(err).Error("save image")
		return "", NewHTTPError(http.StatusInternalServerError, "storage error")
	}
	return url, nil
}

// 画像の削除は失敗してもリクエストは成功扱い
func (u *ItemUsecase) removeImage(ctx context.Context, url string) {
	if err := u.images.Remove(ctx, url); err != nil {
		u.log.WithError(err).WithField("image", url).Warn("remove image")
	}
}

// 監査ログ。「誰が」「何を」「どの対象に」「どう変えたか」
// 本体の変更は済んでいるので、失敗してもログだけ残す。
func (u *ItemUsecase) record(ctx context.Context, actorID int64, action model.AuditAction, itemID int64, before, after *model.Item) {
	err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceItem,
		ResourceID:   itemID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    u.now(),
	})
	if err != nil {
		u.log.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"item_id": itemID,
		}).Error("write audit log")
	}
}

func (u *ItemUsecase) publish(ctx context.Context, typ string, actorID int64, it model.Item) {
	ev := ItemEvent{
		Type:       typ,
		ItemID:     it.ID,
		Name:       it.Name,
		Price:      it.Price,
		ActorID:    actorID,
		OccurredAt: u.now().UTC(),
	}
	if err := u.events.Publish(ctx, ev); err != nil {
		u.log.WithError(err).WithField("event", typ).Warn("publish item event")
	}
}

func toJSON(it *model.Item) string {
	if it == nil {
		return ""
	}
	b, err := json.Marshal(it)
	if err != nil {
		return ""
	}
	return string(b)
}

func hasValue(p *string) bool {
	return p != nil && *p != ""
}
