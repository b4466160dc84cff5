package recipe

import (
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/config"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/search/elastic"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	GroupTagsConsumer   = "recipe-group-tags"
	SearchIndexConsumer = "recipe-search-index"
)

// NewRecipeModule is the recipe service's projection side.
func NewRecipeModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newMongoPreferenceRepository,
			func(r *mongoPreferenceRepository) PreferenceRepository { return r },
			provideSearchIndex,
			NewHandlers,
		),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    GroupTagsConsumer,
			Topic:   contract.TopicGroupTags,
			GroupID: contract.GroupRecipeGroupTags,
		}, NewGroupTagsRouter),
		consumer.NewConsumerModule(config.ConsumerConfig{
			Name:    SearchIndexConsumer,
			Topic:   contract.TopicRecipe,
			GroupID: contract.GroupRecipeSearchIndex,
		}, NewSearchIndexRouter),
	)
}

func provideSearchIndex(client *elasticsearch.Client, conf elastic.Config, log *zap.Logger) elastic.Indexer {
	return elastic.NewIndex(client, conf, searchIndexName, log)
}
