// Package catalogtest provides a sample reference dump for tests.
package catalogtest

import (
	"testing"

	"github.com/codyseavey/card-checklist/internal/catalog"
)

// Sample dumps of the four reference tables, each with the header lines a real
// export carries.
const ManufacturersDump = "-- MySQL dump\nUSE `cardcollection`;\n" +
	"INSERT INTO `card_manufacturer` VALUES (1,'Upper Deck'),(2,'Topps'),(3,'Fleer'),(4,'Leaf'),(5,'Panini'),(6,'Classic'),(7,'Score Board');\n"

const BrandsDump = "-- MySQL dump\nUSE `cardcollection`;\n" +
	"INSERT INTO `card_brand` VALUES (1,'Collectors Choice',1),(2,'Exquisite',1),(3,'SP Authentic',1),(4,'Upper Deck',1),(5,'SP',1),(6,'SP Championship\t',1),(7,'UD3\t',1),(8,'SPx',1),(9,'Hardcourt',1),(10,'Black Diamond',1),(11,'SPx Finite',1),(12,'Choice',1),(13,'Ionix',1),(14,'Ovation',1),(15,'Encore',1),(16,'HoloGrFX',1),(17,'Retro',1),(18,'MVP',1),(19,'Gold Reserve',1),(20,'Victory',1),(21,'Reserve',1),(22,'UDx',1),(23,'SLAM',1),(24,'SP Game Used',1),(25,'Glass',1),(26,'Authentics ',1),(27,'Sweet Shot',1),(28,'Ultimate Victory',1),(29,'Honor Roll',1),(30,'Inspiration',1),(31,'SP Authentic Limited',1),(32,'Flight Team',1),(33,'Finite',1),(34,'Ultimate Collection',1),(35,'Championship Drive ',1),(36,'Exclusives',1),(37,'Standing O',1),(38,'Legends',1),(39,'R-Class',1),(40,'Trilogy',1),(41,'Reflections',1),(42,'ESPN',1),(43,'Rookie Debut',1),(44,'Signature Edition',1),(50,'Topps',2),(51,'Embossed',2),(52,'Finest',2),(53,'Stadium Club',2),(54,'Stadium Club Members Only',2),(55,'Gallery',2),(56,'Bowman\\'s Best\t',2),(57,'Chrome',2),(58,'Gold Label',2),(59,'Tip Off',2),(60,'Heritage',2),(61,'Stars',2),(62,'Reserve',2),(63,'Pristine',2),(64,'Jersey Edition',2),(65,'Bazooka',2),(66,'Turkey Red',2),(67,'Contemporary Collection',2),(68,'Rookie Matrix',2),(69,'First Edition',2),(70,'Luxury Box',2),(71,'Total',2),(80,'Flair',3),(81,'Fleer',3),(82,'Jam Session',3);\n"

const ThemesDump = "-- MySQL dump\nUSE `cardcollection`;\n" +
	"INSERT INTO `card_theme` VALUES (1,'You Crash The Game Rookie Scoring',1),(2,'You Crash The Game Rookie Scoring Redemption',1),(3,'Signature',1),(4,'Lottery Pick',1),(5,'Embossed',51),(6,'Collegiate Best',51),(7,'Rack Pack',NULL);\n"

const VariantsDump = "-- MySQL dump\nUSE `cardcollection`;\n" +
	"INSERT INTO `variant` VALUES (1,'Base'),(2,'Refractor'),(3,'Die Cut'),(5,'Gold'),(6,'Silver'),(7,'Bronze'),(8,'Platinum'),(9,'Diamond'),(10,'Emerald'),(11,'Ruby'),(12,'Black'),(13,'White'),(14,'Yellow'),(15,'Cyan'),(16,'Magenta'),(17,'Red'),(18,'Blue'),(19,'Grean');\n"

// Text returns the sample dump of every reference table.
func Text() catalog.ReferenceText {
	return catalog.ReferenceText{
		Manufacturers: ManufacturersDump,
		Brands:        BrandsDump,
		Themes:        ThemesDump,
		Variants:      VariantsDump,
	}
}

// Catalog builds the sample catalog, failing the test on parse warnings.
// Build warnings (the duplicate "Reserve" brand) are expected and ignored.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	raw, warnings := catalog.ParseReferences(Text())
	if len(warnings) > 0 {
		t.Fatalf("sample dump produced parse warnings: %v", warnings)
	}
	c, _ := catalog.Build(raw)
	return c
}
